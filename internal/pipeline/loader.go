package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/casefile/internal/model"
)

// ManifestName is the optional case description inside a case directory
const ManifestName = "case.yaml"

// defaultWorkspace is used when a case directory names no workspace
const defaultWorkspace = "default"

// documentExtensions maps loadable file extensions to the format tag the
// adapters select on ("" = plain text)
var documentExtensions = map[string]string{
	".txt":      "",
	".md":       "markdown",
	".markdown": "markdown",
	".html":     "html",
	".htm":      "html",
}

// Manifest describes a case directory
type Manifest struct {
	ID            string             `yaml:"id"`
	WorkspaceID   string             `yaml:"workspace_id"`
	Title         string             `yaml:"title"`
	Tags          []string           `yaml:"tags"`
	ExternalRef   string             `yaml:"external_ref"`
	ProcedureType string             `yaml:"procedure_type"`
	SkipDeadlines bool               `yaml:"skip_deadlines"`
	Documents     []ManifestDocument `yaml:"documents"`
}

// ManifestDocument is one document entry of a manifest
type ManifestDocument struct {
	File  string   `yaml:"file"`
	ID    string   `yaml:"id"`
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// LoadCaseDir turns a case directory into an ingest request. With a
// case.yaml the manifest decides; otherwise every .txt, .md and .html file
// becomes a document, ordered by file name.
func LoadCaseDir(dir string) (IngestRequest, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return IngestRequest{}, fmt.Errorf("open case dir: %w", err)
	}
	if !info.IsDir() {
		return IngestRequest{}, fmt.Errorf("open case dir: %s is not a directory", dir)
	}

	manifest, err := readManifest(dir)
	if err != nil {
		return IngestRequest{}, err
	}

	base := filepath.Base(filepath.Clean(dir))
	req := IngestRequest{
		CaseID:                 firstNonEmpty(manifest.ID, base),
		WorkspaceID:            firstNonEmpty(manifest.WorkspaceID, defaultWorkspace),
		Title:                  firstNonEmpty(manifest.Title, deslugify(base)),
		Tags:                   manifest.Tags,
		ExternalRef:            manifest.ExternalRef,
		ProcedureType:          model.ProcedureType(manifest.ProcedureType),
		SkipDeadlineExtraction: manifest.SkipDeadlines,
	}

	entries := manifest.Documents
	if len(entries) == 0 {
		if entries, err = discoverDocuments(dir); err != nil {
			return IngestRequest{}, err
		}
	}

	for _, entry := range entries {
		doc, err := loadDocument(dir, entry)
		if err != nil {
			return IngestRequest{}, err
		}
		req.Documents = append(req.Documents, doc)
	}
	return req, nil
}

func readManifest(dir string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

func discoverDocuments(dir string) ([]ManifestDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list case dir: %w", err)
	}
	var docs []ManifestDocument
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := documentExtensions[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			docs = append(docs, ManifestDocument{File: e.Name()})
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].File < docs[j].File })
	return docs, nil
}

// LoadDocument reads a single document file, as LoadCaseDir would
func LoadDocument(path string) (model.SourceDocument, error) {
	return loadDocument(filepath.Dir(path), ManifestDocument{File: filepath.Base(path)})
}

func loadDocument(dir string, entry ManifestDocument) (model.SourceDocument, error) {
	if entry.File == "" {
		return model.SourceDocument{}, fmt.Errorf("manifest document without file")
	}
	path := entry.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return model.SourceDocument{}, fmt.Errorf("read document: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(entry.File))
	stem := strings.TrimSuffix(filepath.Base(entry.File), filepath.Ext(entry.File))

	tags := model.AppendUnique(nil, entry.Tags...)
	if format := documentExtensions[ext]; format != "" {
		tags = model.AppendUnique(tags, format)
	}

	return model.SourceDocument{
		ID:      firstNonEmpty(entry.ID, stem),
		Title:   firstNonEmpty(entry.Title, deslugify(stem)),
		Content: string(content),
		Tags:    tags,
	}, nil
}

// deslugify turns a file or directory name into a title
func deslugify(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(name), " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// IngestDir loads a case directory and ingests it. Config extraction
// settings fill in what the manifest leaves open.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (*model.CaseIngestionResult, error) {
	req, err := LoadCaseDir(dir)
	if err != nil {
		return nil, err
	}
	if req.ProcedureType == "" && p.config.Extraction.ProcedureType != "" {
		req.ProcedureType = model.ProcedureType(p.config.Extraction.ProcedureType)
	}
	if p.config.Extraction.SkipDeadlines {
		req.SkipDeadlineExtraction = true
	}
	return p.IngestCaseFromDocuments(ctx, req)
}
