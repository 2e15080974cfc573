package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/store"
)

// EntityError is one failed upsert
type EntityError struct {
	Kind store.Kind
	ID   string
	Err  error
}

func (e EntityError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
}

func (e EntityError) Unwrap() error {
	return e.Err
}

// PersistError collects the upserts that failed in one ingestion. The
// other entities were written.
type PersistError struct {
	Errors []EntityError
}

func (e *PersistError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, ee := range e.Errors {
		parts[i] = ee.Error()
	}
	return fmt.Sprintf("persist: %d of the case entities failed: %s", len(e.Errors), strings.Join(parts, "; "))
}

// Unwrap exposes the individual causes to errors.Is and errors.As
func (e *PersistError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, ee := range e.Errors {
		out[i] = ee
	}
	return out
}

// upsert is one pending write
type upsert struct {
	kind store.Kind
	id   string
	call func(ctx context.Context) error
}

func upserts(s store.Store, res *model.CaseIngestionResult) []upsert {
	cf := res.CaseFile
	ops := []upsert{{store.KindCaseFile, cf.ID, func(ctx context.Context) error { return s.UpsertCaseFile(ctx, cf) }}}
	for _, a := range res.Actors {
		a := a
		ops = append(ops, upsert{store.KindActor, a.ID, func(ctx context.Context) error { return s.UpsertActor(ctx, a) }})
	}
	for _, i := range res.Issues {
		i := i
		ops = append(ops, upsert{store.KindIssue, i.ID, func(ctx context.Context) error { return s.UpsertIssue(ctx, i) }})
	}
	for _, d := range res.Deadlines {
		d := d
		ops = append(ops, upsert{store.KindDeadline, d.ID, func(ctx context.Context) error { return s.UpsertDeadline(ctx, d) }})
	}
	for _, e := range res.MemoryEvents {
		e := e
		ops = append(ops, upsert{store.KindMemoryEvent, e.ID, func(ctx context.Context) error { return s.UpsertMemoryEvent(ctx, e) }})
	}
	return ops
}

// persist issues every upsert concurrently. A failed write never cancels
// the others; failures are collected into a *PersistError.
func (p *Pipeline) persist(ctx context.Context, res *model.CaseIngestionResult) error {
	if p.store == nil {
		return nil
	}

	var (
		mu     sync.Mutex
		failed []EntityError
	)

	limit := p.config.Concurrency.PersistWorkers
	if limit <= 0 {
		limit = 1
	}
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for _, op := range upserts(p.store, res) {
		op := op
		g.Go(func() error {
			err := p.limiter.Wait(ctx, string(op.kind))
			if err == nil {
				err = op.call(ctx)
			}
			if err != nil {
				p.logger.Warn("persist failed",
					zap.String("kind", string(op.kind)),
					zap.String("id", op.id),
					zap.Error(err),
				)
				mu.Lock()
				failed = append(failed, EntityError{Kind: op.kind, ID: op.id, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failed) == 0 {
		return nil
	}
	sort.Slice(failed, func(i, j int) bool {
		if failed[i].Kind != failed[j].Kind {
			return kindIndex(failed[i].Kind) < kindIndex(failed[j].Kind)
		}
		return failed[i].ID < failed[j].ID
	})
	return &PersistError{Errors: failed}
}

func kindIndex(k store.Kind) int {
	for i, kind := range store.Kinds {
		if kind == k {
			return i
		}
	}
	return len(store.Kinds)
}
