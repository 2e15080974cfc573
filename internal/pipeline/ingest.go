package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/casefile/internal/collect"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/resolve"
)

// ErrInvalidRequest marks requests the pipeline refuses to process
var ErrInvalidRequest = errors.New("invalid ingest request")

// IngestRequest is one ingestion call: the full document set of a case
type IngestRequest struct {
	CaseID                 string
	WorkspaceID            string
	Title                  string
	Documents              []model.SourceDocument
	Tags                   []string
	ExternalRef            string
	ProcedureType          model.ProcedureType // forced type; empty = detect per document
	SkipDeadlineExtraction bool
}

// Validate rejects requests with missing ids, duplicate document ids or an
// unknown procedure type
func (r IngestRequest) Validate() error {
	if strings.TrimSpace(r.CaseID) == "" {
		return fmt.Errorf("%w: empty case id", ErrInvalidRequest)
	}
	if r.ProcedureType != "" {
		if _, ok := model.ParseProcedureType(string(r.ProcedureType)); !ok {
			return fmt.Errorf("%w: unknown procedure type %q", ErrInvalidRequest, r.ProcedureType)
		}
	}
	seen := make(map[string]bool, len(r.Documents))
	for i, doc := range r.Documents {
		if strings.TrimSpace(doc.ID) == "" {
			return fmt.Errorf("%w: document %d has no id", ErrInvalidRequest, i)
		}
		if seen[doc.ID] {
			return fmt.Errorf("%w: duplicate document id %q", ErrInvalidRequest, doc.ID)
		}
		seen[doc.ID] = true
	}
	return nil
}

// IngestCaseFromDocuments rebuilds the case from the given documents and
// persists every entity. On persistence failures the result is returned
// together with a *PersistError.
func (p *Pipeline) IngestCaseFromDocuments(ctx context.Context, req IngestRequest) (*model.CaseIngestionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	scans, err := p.scanAll(ctx, req)
	if err != nil {
		return nil, err
	}

	result := p.assemble(req, scans, p.now().UTC())

	persistErr := p.persist(ctx, result)

	p.logger.Info("case ingested",
		zap.String("case_id", result.CaseFile.ID),
		zap.String("procedure_type", string(result.CaseFile.ProcedureType)),
		zap.Int("documents", len(result.CaseFile.DocumentIDs)),
		zap.Int("actors", len(result.Actors)),
		zap.Int("issues", len(result.Issues)),
		zap.Int("deadlines", len(result.Deadlines)),
		zap.Duration("duration", time.Since(start)),
	)

	if persistErr != nil {
		return result, persistErr
	}
	return result, nil
}

// assemble folds the document scans into the case aggregate
func (p *Pipeline) assemble(req IngestRequest, scans []model.DocumentScan, now time.Time) *model.CaseIngestionResult {
	profiles := make([]resolve.DocumentProfiles, len(scans))
	for i, scan := range scans {
		profiles[i] = resolve.DocumentProfiles{DocumentID: req.Documents[i].ID, Profiles: scan.Profiles}
	}

	result := &model.CaseIngestionResult{
		Actors:       resolve.Resolve(req.CaseID, profiles, now),
		Issues:       []model.CaseIssue{},
		Deadlines:    []model.CaseDeadline{},
		MemoryEvents: []model.CaseMemoryEvent{},
	}

	cf := model.CaseFile{
		ID:             req.CaseID,
		WorkspaceID:    req.WorkspaceID,
		Title:          req.Title,
		Tags:           model.AppendUnique(nil, req.Tags...),
		ExternalRef:    req.ExternalRef,
		ProcedureType:  dominantProcedure(req.ProcedureType, scans),
		DocumentIDs:    []string{},
		ActorIDs:       []string{},
		IssueIDs:       []string{},
		DeadlineIDs:    []string{},
		MemoryEventIDs: []string{},
		UpdatedAt:      now,
	}

	for i, doc := range req.Documents {
		scan := scans[i]
		cf.DocumentIDs = append(cf.DocumentIDs, doc.ID)

		for _, dueAt := range scan.Deadlines {
			d := collect.BuildDeadline(req.CaseID, doc, dueAt)
			if model.Contains(cf.DeadlineIDs, d.ID) {
				continue
			}
			result.Deadlines = append(result.Deadlines, d)
			cf.DeadlineIDs = append(cf.DeadlineIDs, d.ID)
		}

		for _, hit := range scan.Issues {
			issue := collect.BuildIssue(req.CaseID, doc.ID, doc.Title, hit)
			if model.Contains(cf.IssueIDs, issue.ID) {
				continue
			}
			result.Issues = append(result.Issues, issue)
			cf.IssueIDs = append(cf.IssueIDs, issue.ID)
		}

		event := collect.BuildMemoryEvent(req.CaseID, doc, scan.Excerpt, now)
		result.MemoryEvents = append(result.MemoryEvents, event)
		cf.MemoryEventIDs = append(cf.MemoryEventIDs, event.ID)
	}

	for _, a := range result.Actors {
		cf.ActorIDs = append(cf.ActorIDs, a.ID)
	}
	cf.Summary = summarize(cf, len(result.Actors))

	result.CaseFile = cf
	return result
}

// procedureOrder breaks ties between equally frequent procedure types
var procedureOrder = []model.ProcedureType{
	model.ProcedureCriminal,
	model.ProcedureCivil,
	model.ProcedureAdministrative,
	model.ProcedureLabor,
}

// dominantProcedure is the forced type if given, else the type detected on
// most documents
func dominantProcedure(override model.ProcedureType, scans []model.DocumentScan) model.ProcedureType {
	if override != "" && override != model.ProcedureUnknown {
		return override
	}
	counts := make(map[model.ProcedureType]int)
	for _, scan := range scans {
		counts[scan.ProcedureType]++
	}
	best, bestCount := model.ProcedureUnknown, 0
	for _, pt := range procedureOrder {
		if counts[pt] > bestCount {
			best, bestCount = pt, counts[pt]
		}
	}
	return best
}

func summarize(cf model.CaseFile, actors int) string {
	title := cf.Title
	if title == "" {
		title = cf.ID
	}
	return fmt.Sprintf("Case %q (%s): %s ingested, %s identified, %s flagged, %s extracted.",
		title,
		cf.ProcedureType,
		plural(len(cf.DocumentIDs), "document", "documents"),
		plural(actors, "actor", "actors"),
		plural(len(cf.IssueIDs), "issue", "issues"),
		plural(len(cf.DeadlineIDs), "deadline", "deadlines"),
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
