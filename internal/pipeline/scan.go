package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/casefile/internal/cache"
	"github.com/ppiankov/casefile/internal/collect"
	"github.com/ppiankov/casefile/internal/extract"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/worker"
)

// scannerVersion is part of every cache key; bump it when extraction output changes
const scannerVersion = "1"

// ScanDocument runs the per-document stages: format normalisation,
// reliability scoring, actor extraction, deadline and issue detection.
// An empty or unknown override lets the classifier decide.
func (p *Pipeline) ScanDocument(doc model.SourceDocument, override model.ProcedureType, skipDeadlines bool) model.DocumentScan {
	text, _ := p.adapters.Normalize(doc)
	normalized := doc
	normalized.Content = text

	reliability := p.scorer.Calculate(normalized)

	procedure := override
	if procedure == "" || procedure == model.ProcedureUnknown {
		procedure = extract.DetectProcedureType(text)
	}

	scan := model.DocumentScan{
		DocumentID:    doc.ID,
		Weight:        reliability.Weight,
		Reliability:   reliability.Signals,
		ProcedureType: procedure,
		Profiles: p.actors.Extract(text, extract.ExtractOptions{
			ProcedureType: procedure,
			SourceWeight:  reliability.Weight,
		}),
		Issues:  collect.DetectIssues(text),
		Excerpt: collect.Excerpt(text),
	}
	if !skipDeadlines {
		scan.Deadlines = p.deadlines.Extract(text)
	}
	return scan
}

// scanKey identifies a scan by everything that can change its output
func scanKey(doc model.SourceDocument, override model.ProcedureType, skipDeadlines bool) string {
	return cache.CacheKey(
		doc.Content,
		doc.Title,
		strings.Join(doc.Tags, "\x00"),
		string(override),
		strconv.FormatBool(skipDeadlines),
		scannerVersion,
	)
}

// scanJob scans one document on the worker pool
type scanJob struct {
	pipeline      *Pipeline
	doc           model.SourceDocument
	override      model.ProcedureType
	skipDeadlines bool
}

type scanResult struct {
	scan     model.DocumentScan
	cacheHit bool
}

func (r *scanResult) GetError() error {
	return nil
}

func (j *scanJob) Execute(ctx context.Context) worker.Result {
	p := j.pipeline
	key := ""
	if p.cache != nil {
		key = scanKey(j.doc, j.override, j.skipDeadlines)
		if scan, ok := p.cache.Get(key); ok {
			scan.DocumentID = j.doc.ID
			return &scanResult{scan: scan, cacheHit: true}
		}
	}

	scan := p.ScanDocument(j.doc, j.override, j.skipDeadlines)
	if p.cache != nil {
		if err := p.cache.Put(key, scan); err != nil {
			p.logger.Warn("cache write failed", zap.String("doc_id", j.doc.ID), zap.Error(err))
		}
	}
	return &scanResult{scan: scan}
}

// scanAll scans the documents concurrently and returns the scans in input order
func (p *Pipeline) scanAll(ctx context.Context, req IngestRequest) ([]model.DocumentScan, error) {
	jobs := make([]worker.Job, len(req.Documents))
	for i, doc := range req.Documents {
		jobs[i] = &scanJob{
			pipeline:      p,
			doc:           doc,
			override:      req.ProcedureType,
			skipDeadlines: req.SkipDeadlineExtraction,
		}
	}

	results := worker.RunOrdered(ctx, p.config.Concurrency.Workers, jobs)

	scans := make([]model.DocumentScan, len(results))
	for i, res := range results {
		if res == nil {
			return nil, fmt.Errorf("scan %s: %w", req.Documents[i].ID, context.Cause(ctx))
		}
		sr := res.(*scanResult)
		scans[i] = sr.scan
		p.logger.Debug("document scanned",
			zap.String("doc_id", sr.scan.DocumentID),
			zap.Float64("weight", sr.scan.Weight),
			zap.String("procedure_type", string(sr.scan.ProcedureType)),
			zap.Int("profiles", len(sr.scan.Profiles)),
			zap.Bool("cache_hit", sr.cacheHit),
		)
	}
	return scans, nil
}
