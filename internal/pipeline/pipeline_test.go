package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/casefile/internal/cache"
	"github.com/ppiankov/casefile/internal/logging"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/store"
)

const hearingMinutes = `Landesgericht für Strafsachen Wien, Richterin Dr. Anna Berger
Staatsanwältin Mag. Petra Klein, StA Wien
Opfer Maria Huber, Tel. +43 664 9876543, maria.huber@example.at
Anschrift: Hauptstraße 12, 1010 Wien
Opfer Maria Huber vertreten durch RA Dr. Thomas Gruber, fordert Schadenersatz EUR 12.500
Privatbeteiligter Karl Schmid, Schmid Bau GmbH, vertreten durch Rechtsanwältin Dr. Eva Lang, Tel. +43 664 1234567`

const objection = `Opfer Maria Huber erhebt Widerspruch gegen den Beschluss.
Die Stellungnahme ist fällig am 19.02.2026.`

var fixedNow = time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)

func sampleRequest() IngestRequest {
	return IngestRequest{
		CaseID:      "case-42",
		WorkspaceID: "ws-1",
		Title:       "Huber gegen Schmid",
		Tags:        []string{"strafsache", "strafsache"},
		ExternalRef: "12 Hv 34/26",
		Documents: []model.SourceDocument{
			{ID: "doc-1", Title: "Protokoll der Hauptverhandlung", Content: hearingMinutes},
			{ID: "doc-2", Title: "Widerspruch", Content: objection},
		},
	}
}

func newTestPipeline(t *testing.T, opts ...Option) *Pipeline {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Concurrency.Workers = 2
	cfg.Concurrency.PersistWorkers = 3
	return NewPipeline(cfg, append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func findActor(actors []model.CaseActor, name string) *model.CaseActor {
	for i := range actors {
		if strings.Contains(actors[i].Name, name) {
			return &actors[i]
		}
	}
	return nil
}

func TestPipeline_IngestBuildsCase(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestPipeline(t, WithStore(st))

	res, err := p.IngestCaseFromDocuments(context.Background(), sampleRequest())
	require.NoError(t, err)

	cf := res.CaseFile
	assert.Equal(t, "case-42", cf.ID)
	assert.Equal(t, "ws-1", cf.WorkspaceID)
	assert.Equal(t, []string{"strafsache"}, cf.Tags)
	assert.Equal(t, model.ProcedureCriminal, cf.ProcedureType)
	assert.Equal(t, []string{"doc-1", "doc-2"}, cf.DocumentIDs)
	assert.Len(t, cf.ActorIDs, len(res.Actors))
	assert.Equal(t, fixedNow, cf.UpdatedAt)

	victim := findActor(res.Actors, "Maria Huber")
	require.NotNil(t, victim)
	assert.Equal(t, "actor:person:maria-huber", victim.ID)
	assert.Equal(t, model.RoleVictim, victim.Role)
	assert.Equal(t, []string{"doc-1", "doc-2"}, victim.SourceDocIDs)
	assert.Contains(t, victim.ClaimAmounts, "EUR 12.500")
	assert.Contains(t, victim.RepresentedBy, "Thomas Gruber")

	require.Len(t, res.Deadlines, 1)
	assert.Equal(t, "2026-02-19T09:00:00.000Z", res.Deadlines[0].DueAt)
	assert.Equal(t, []string{"doc-2"}, res.Deadlines[0].SourceDocIDs)
	assert.Equal(t, model.PriorityCritical, res.Deadlines[0].Priority)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, model.IssueContradiction, res.Issues[0].Category)

	require.Len(t, res.MemoryEvents, 2)
	assert.Contains(t, res.MemoryEvents[1].Summary, `Document "Widerspruch" ingested`)

	assert.Equal(t,
		fmt.Sprintf(`Case "Huber gegen Schmid" (criminal): 2 documents ingested, %d actors identified, 1 issue flagged, 1 deadline extracted.`, len(res.Actors)),
		cf.Summary)

	stored, err := st.LoadCase(context.Background(), "case-42")
	require.NoError(t, err)
	assert.Equal(t, *res, *stored)
}

func TestPipeline_IngestIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	p := newTestPipeline(t, WithStore(st))

	first, err := p.IngestCaseFromDocuments(context.Background(), sampleRequest())
	require.NoError(t, err)
	actors := st.Count(store.KindActor)

	second, err := p.IngestCaseFromDocuments(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, actors, st.Count(store.KindActor))
	assert.Equal(t, 1, st.Count(store.KindCaseFile))
}

func TestPipeline_CasesShareActorsWithoutOverwriting(t *testing.T) {
	ctx := context.Background()
	backends := map[string]store.Backend{"memory": store.NewMemoryStore()}
	sqlite, err := store.NewSQLiteStore(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = sqlite.Close() }()
	backends["sqlite"] = sqlite

	for name, st := range backends {
		t.Run(name, func(t *testing.T) {
			p := newTestPipeline(t, WithStore(st))
			ingest := func(caseID string) *model.CaseIngestionResult {
				res, err := p.IngestCaseFromDocuments(ctx, IngestRequest{
					CaseID: caseID,
					Documents: []model.SourceDocument{
						{ID: "anklage", Title: "Anklageschrift", Content: "Staatsanwältin Mag. Petra Klein, StA Wien"},
					},
				})
				require.NoError(t, err)
				return res
			}

			first := ingest("case-A")
			require.NotEmpty(t, first.Actors)
			ingest("case-B")

			loaded, err := st.LoadCase(ctx, "case-A")
			require.NoError(t, err)
			assert.Equal(t, first.CaseFile.ActorIDs, loaded.CaseFile.ActorIDs)
			require.Len(t, loaded.Actors, len(first.Actors))
			for _, a := range loaded.Actors {
				assert.Equal(t, "case-A", a.CaseID)
			}
		})
	}
}

func TestPipeline_DocumentOrderDoesNotChangeIdentity(t *testing.T) {
	p := newTestPipeline(t)

	req := sampleRequest()
	forward, err := p.IngestCaseFromDocuments(context.Background(), req)
	require.NoError(t, err)

	req.Documents[0], req.Documents[1] = req.Documents[1], req.Documents[0]
	backward, err := p.IngestCaseFromDocuments(context.Background(), req)
	require.NoError(t, err)

	assert.ElementsMatch(t, forward.CaseFile.ActorIDs, backward.CaseFile.ActorIDs)
	victim := findActor(backward.Actors, "Maria Huber")
	require.NotNil(t, victim)
	assert.Equal(t, model.RoleVictim, victim.Role)
}

func TestPipeline_RejectsInvalidRequests(t *testing.T) {
	p := newTestPipeline(t)

	cases := map[string]func(*IngestRequest){
		"empty case id":     func(r *IngestRequest) { r.CaseID = " " },
		"duplicate doc id":  func(r *IngestRequest) { r.Documents[1].ID = "doc-1" },
		"missing doc id":    func(r *IngestRequest) { r.Documents[0].ID = "" },
		"unknown procedure": func(r *IngestRequest) { r.ProcedureType = "maritime" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := sampleRequest()
			mutate(&req)
			res, err := p.IngestCaseFromDocuments(context.Background(), req)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrInvalidRequest), "got %v", err)
		})
	}
}

func TestPipeline_SkipDeadlineExtraction(t *testing.T) {
	p := newTestPipeline(t)
	req := sampleRequest()
	req.SkipDeadlineExtraction = true

	res, err := p.IngestCaseFromDocuments(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, res.Deadlines)
	assert.Empty(t, res.CaseFile.DeadlineIDs)
	assert.Len(t, res.Issues, 1)
}

func TestPipeline_ForcedProcedureType(t *testing.T) {
	p := newTestPipeline(t)
	req := IngestRequest{
		CaseID:        "civil-1",
		ProcedureType: model.ProcedureCivil,
		Documents: []model.SourceDocument{
			{ID: "d1", Title: "Klage", Content: "Der Kläger Hans Beispiel tritt als Nebenkläger auf. Strafverfahren nach StGB."},
		},
	}

	res, err := p.IngestCaseFromDocuments(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.ProcedureCivil, res.CaseFile.ProcedureType)
	actor := findActor(res.Actors, "Hans Beispiel")
	require.NotNil(t, actor)
	assert.Equal(t, model.RoleClient, actor.Role)

	req.ProcedureType = model.ProcedureCriminal
	res, err = p.IngestCaseFromDocuments(context.Background(), req)
	require.NoError(t, err)
	actor = findActor(res.Actors, "Hans Beispiel")
	require.NotNil(t, actor)
	assert.Equal(t, model.RolePrivatePlaintiff, actor.Role)
}

func TestPipeline_EmptyCase(t *testing.T) {
	p := newTestPipeline(t)

	res, err := p.IngestCaseFromDocuments(context.Background(), IngestRequest{CaseID: "empty", Title: "Leer"})
	require.NoError(t, err)
	assert.Equal(t, model.ProcedureUnknown, res.CaseFile.ProcedureType)
	assert.Empty(t, res.Actors)
	assert.NotNil(t, res.CaseFile.ActorIDs)
	assert.Equal(t, `Case "Leer" (unknown): 0 documents ingested, 0 actors identified, 0 issues flagged, 0 deadlines extracted.`, res.CaseFile.Summary)
}

func TestPipeline_HTMLDocument(t *testing.T) {
	p := newTestPipeline(t)
	req := IngestRequest{
		CaseID: "html-1",
		Documents: []model.SourceDocument{{
			ID:      "d1",
			Title:   "Urteil",
			Tags:    []string{"html"},
			Content: "<html><body><main><p>Richterin Dr. Anna Berger</p><p>Staatsanwältin Mag. Petra Klein</p></main></body></html>",
		}},
	}

	res, err := p.IngestCaseFromDocuments(context.Background(), req)
	require.NoError(t, err)

	judge := findActor(res.Actors, "Anna Berger")
	require.NotNil(t, judge)
	assert.Equal(t, model.RoleJudge, judge.Role)
	prosecutor := findActor(res.Actors, "Petra Klein")
	require.NotNil(t, prosecutor)
	assert.Equal(t, model.RoleProsecutor, prosecutor.Role)
}

// failingStore rejects every actor upsert
type failingStore struct {
	*store.MemoryStore
}

func (s failingStore) UpsertActor(ctx context.Context, a model.CaseActor) error {
	return errors.New("actor table locked")
}

func TestPipeline_PartialPersistence(t *testing.T) {
	mem := store.NewMemoryStore()
	logger, logs := logging.NewObserved(zapcore.WarnLevel)
	p := newTestPipeline(t, WithStore(failingStore{mem}), WithLogger(logger))

	res, err := p.IngestCaseFromDocuments(context.Background(), sampleRequest())
	require.Error(t, err)
	require.NotNil(t, res)

	var perr *PersistError
	require.True(t, errors.As(err, &perr))
	assert.Len(t, perr.Errors, len(res.Actors))
	for _, ee := range perr.Errors {
		assert.Equal(t, store.KindActor, ee.Kind)
	}

	assert.Equal(t, 0, mem.Count(store.KindActor))
	assert.Equal(t, 1, mem.Count(store.KindCaseFile))
	assert.Equal(t, 1, mem.Count(store.KindDeadline))
	assert.Equal(t, 2, mem.Count(store.KindMemoryEvent))
	assert.Equal(t, len(res.Actors), logs.FilterMessage("persist failed").Len())
}

func TestPipeline_RateLimitedPersistence(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.RateLimiting.RequestsPerSecond = 1000
	cfg.RateLimiting.BurstSize = 1
	st := store.NewMemoryStore()
	p := NewPipeline(cfg, WithStore(st))

	res, err := p.IngestCaseFromDocuments(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, len(res.Actors), st.Count(store.KindActor))
}

func TestPipeline_ScanCache(t *testing.T) {
	logger, logs := logging.NewObserved(zapcore.DebugLevel)
	p := newTestPipeline(t, WithCache(cache.NewMemoryCache(time.Minute, time.Minute)), WithLogger(logger))

	first, err := p.IngestCaseFromDocuments(context.Background(), sampleRequest())
	require.NoError(t, err)
	for _, entry := range logs.TakeAll() {
		if entry.Message == "document scanned" {
			assert.Equal(t, false, entry.ContextMap()["cache_hit"])
		}
	}

	second, err := p.IngestCaseFromDocuments(context.Background(), sampleRequest())
	require.NoError(t, err)
	scanned := logs.FilterMessage("document scanned").All()
	require.Len(t, scanned, 2)
	for _, entry := range scanned {
		assert.Equal(t, true, entry.ContextMap()["cache_hit"])
	}
	assert.Equal(t, first, second)
}

func TestPipeline_CachedScanKeepsDocumentID(t *testing.T) {
	p := newTestPipeline(t, WithCache(cache.NewMemoryCache(time.Minute, time.Minute)))

	req := IngestRequest{CaseID: "c", Documents: []model.SourceDocument{
		{ID: "a", Title: "Widerspruch", Content: objection},
		{ID: "b", Title: "Widerspruch", Content: objection},
	}}
	res, err := p.IngestCaseFromDocuments(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Deadlines, 2)
	assert.NotEqual(t, res.Deadlines[0].ID, res.Deadlines[1].ID)
	victim := findActor(res.Actors, "Maria Huber")
	require.NotNil(t, victim)
	assert.Equal(t, []string{"a", "b"}, victim.SourceDocIDs)
}

func TestPipeline_CancelledContext(t *testing.T) {
	p := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := sampleRequest()
	for i := 0; i < 50; i++ {
		req.Documents = append(req.Documents, model.SourceDocument{ID: fmt.Sprintf("extra-%d", i), Content: hearingMinutes})
	}
	_, err := p.IngestCaseFromDocuments(ctx, req)
	if err != nil {
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	}
}

func TestPipeline_ScanDocument(t *testing.T) {
	p := newTestPipeline(t)
	scan := p.ScanDocument(model.SourceDocument{ID: "d", Title: "Urteil", Content: hearingMinutes}, "", false)

	assert.Equal(t, "d", scan.DocumentID)
	assert.Equal(t, model.ProcedureCriminal, scan.ProcedureType)
	assert.Greater(t, scan.Weight, 1.0)
	assert.NotEmpty(t, scan.Reliability)
	assert.NotEmpty(t, scan.Profiles)
	assert.NotEmpty(t, scan.Excerpt)
}

func TestDominantProcedure(t *testing.T) {
	scans := func(types ...model.ProcedureType) []model.DocumentScan {
		out := make([]model.DocumentScan, len(types))
		for i, pt := range types {
			out[i] = model.DocumentScan{ProcedureType: pt}
		}
		return out
	}

	tests := []struct {
		name     string
		override model.ProcedureType
		scans    []model.DocumentScan
		want     model.ProcedureType
	}{
		{"no documents", "", nil, model.ProcedureUnknown},
		{"all unknown", "", scans(model.ProcedureUnknown, model.ProcedureUnknown), model.ProcedureUnknown},
		{"majority", "", scans(model.ProcedureCivil, model.ProcedureLabor, model.ProcedureCivil), model.ProcedureCivil},
		{"unknown does not win", "", scans(model.ProcedureUnknown, model.ProcedureUnknown, model.ProcedureLabor), model.ProcedureLabor},
		{"tie goes to criminal first", "", scans(model.ProcedureCivil, model.ProcedureCriminal), model.ProcedureCriminal},
		{"tie civil over labor", "", scans(model.ProcedureLabor, model.ProcedureCivil), model.ProcedureCivil},
		{"override wins", model.ProcedureAdministrative, scans(model.ProcedureCivil), model.ProcedureAdministrative},
		{"unknown override ignored", model.ProcedureUnknown, scans(model.ProcedureCivil), model.ProcedureCivil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dominantProcedure(tt.override, tt.scans))
		})
	}
}

func TestPersistError(t *testing.T) {
	cause := errors.New("boom")
	err := &PersistError{Errors: []EntityError{
		{Kind: store.KindActor, ID: "actor:person:x", Err: cause},
	}}
	assert.Contains(t, err.Error(), "actor actor:person:x: boom")
	assert.True(t, errors.Is(err, cause))
}
