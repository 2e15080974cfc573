package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/store"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestLoadCaseDir_WithoutManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "huber-gegen-schmid")
	writeFiles(t, dir, map[string]string{
		"02_widerspruch.md":        "# Widerspruch\n\n" + objection,
		"01_hauptverhandlung.txt":  hearingMinutes,
		"03-ladung.html":           "<html><body><p>Ladung</p></body></html>",
		"notes.json":               "{}",
		"attachments/scan_001.txt": "ignored",
	})

	req, err := LoadCaseDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "huber-gegen-schmid", req.CaseID)
	assert.Equal(t, "huber gegen schmid", req.Title)
	assert.Equal(t, "default", req.WorkspaceID)
	require.Len(t, req.Documents, 3)

	assert.Equal(t, "01_hauptverhandlung", req.Documents[0].ID)
	assert.Equal(t, "01 hauptverhandlung", req.Documents[0].Title)
	assert.Empty(t, req.Documents[0].Tags)
	assert.Equal(t, hearingMinutes, req.Documents[0].Content)

	assert.Equal(t, []string{"markdown"}, req.Documents[1].Tags)
	assert.Equal(t, "03 ladung", req.Documents[2].Title)
	assert.Equal(t, []string{"html"}, req.Documents[2].Tags)
}

func TestLoadCaseDir_WithManifest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		ManifestName: `id: case-7
workspace_id: kanzlei-wien
title: Huber gegen Schmid
tags: [strafsache]
external_ref: 12 Hv 34/26
procedure_type: criminal
skip_deadlines: true
documents:
  - file: protokoll.txt
    id: hv-protokoll
    title: Protokoll der Hauptverhandlung
    tags: [official]
  - file: entwurf.txt
`,
		"protokoll.txt": hearingMinutes,
		"entwurf.txt":   objection,
		"ignored.txt":   "not listed",
	})

	req, err := LoadCaseDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "case-7", req.CaseID)
	assert.Equal(t, "kanzlei-wien", req.WorkspaceID)
	assert.Equal(t, "Huber gegen Schmid", req.Title)
	assert.Equal(t, []string{"strafsache"}, req.Tags)
	assert.Equal(t, "12 Hv 34/26", req.ExternalRef)
	assert.Equal(t, model.ProcedureCriminal, req.ProcedureType)
	assert.True(t, req.SkipDeadlineExtraction)

	require.Len(t, req.Documents, 2)
	assert.Equal(t, "hv-protokoll", req.Documents[0].ID)
	assert.Equal(t, "Protokoll der Hauptverhandlung", req.Documents[0].Title)
	assert.Equal(t, []string{"official"}, req.Documents[0].Tags)
	assert.Equal(t, "entwurf", req.Documents[1].ID)
	assert.Equal(t, "entwurf", req.Documents[1].Title)
}

func TestLoadCaseDir_Errors(t *testing.T) {
	_, err := LoadCaseDir(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "case.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = LoadCaseDir(file)
	assert.Error(t, err)

	badYAML := t.TempDir()
	writeFiles(t, badYAML, map[string]string{ManifestName: "documents: [unclosed"})
	_, err = LoadCaseDir(badYAML)
	assert.Error(t, err)

	missingDoc := t.TempDir()
	writeFiles(t, missingDoc, map[string]string{ManifestName: "documents:\n  - file: nowhere.txt\n"})
	_, err = LoadCaseDir(missingDoc)
	assert.Error(t, err)
}

func TestDeslugify(t *testing.T) {
	cases := map[string]string{
		"huber-gegen-schmid": "huber gegen schmid",
		"01__Ladung_HV":      "01 Ladung HV",
		"plain":              "plain",
	}
	for in, want := range cases {
		assert.Equal(t, want, deslugify(in), in)
	}
}

func TestPipeline_IngestDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "arbeitsrecht")
	writeFiles(t, dir, map[string]string{
		"klage.txt": "Der Kläger Hans Beispiel tritt als Nebenkläger auf. Strafverfahren nach StGB.\nDie Stellungnahme ist fällig am 19.02.2026.",
	})

	cfg := model.DefaultConfig()
	cfg.Extraction.ProcedureType = string(model.ProcedureCivil)
	cfg.Extraction.SkipDeadlines = true
	st := store.NewMemoryStore()
	p := NewPipeline(cfg, WithStore(st))

	res, err := p.IngestDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "arbeitsrecht", res.CaseFile.ID)
	assert.Equal(t, model.ProcedureCivil, res.CaseFile.ProcedureType)
	assert.Empty(t, res.Deadlines)

	actor := findActor(res.Actors, "Hans Beispiel")
	require.NotNil(t, actor)
	assert.Equal(t, model.RoleClient, actor.Role)
	assert.Equal(t, 1, st.Count(store.KindCaseFile))
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"ladung_zur_verhandlung.html": "<p>Ladung</p>"})

	doc, err := LoadDocument(filepath.Join(dir, "ladung_zur_verhandlung.html"))
	require.NoError(t, err)
	assert.Equal(t, "ladung_zur_verhandlung", doc.ID)
	assert.Equal(t, "ladung zur verhandlung", doc.Title)
	assert.Equal(t, []string{"html"}, doc.Tags)
}
