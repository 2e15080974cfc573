// Package store persists ingestion results. Every write is an idempotent
// upsert keyed by entity id; the pipeline never reads back.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/casefile/internal/model"
)

// ErrNotFound is returned by LoadCase for unknown case ids
var ErrNotFound = errors.New("not found")

// Kind names an entity type and the table it lives in
type Kind string

const (
	KindCaseFile    Kind = "case_file"
	KindActor       Kind = "actor"
	KindIssue       Kind = "issue"
	KindDeadline    Kind = "deadline"
	KindMemoryEvent Kind = "memory_event"
)

// Kinds lists every entity kind in persistence order
var Kinds = []Kind{KindCaseFile, KindActor, KindIssue, KindDeadline, KindMemoryEvent}

func (k Kind) table() string {
	switch k {
	case KindCaseFile:
		return "case_files"
	case KindActor:
		return "actors"
	case KindIssue:
		return "issues"
	case KindDeadline:
		return "deadlines"
	case KindMemoryEvent:
		return "memory_events"
	}
	return ""
}

// Store is the write side used by the ingestion pipeline
type Store interface {
	UpsertCaseFile(ctx context.Context, cf model.CaseFile) error
	UpsertActor(ctx context.Context, a model.CaseActor) error
	UpsertIssue(ctx context.Context, i model.CaseIssue) error
	UpsertDeadline(ctx context.Context, d model.CaseDeadline) error
	UpsertMemoryEvent(ctx context.Context, e model.CaseMemoryEvent) error
}

// Reader loads a stored case back
type Reader interface {
	LoadCase(ctx context.Context, caseID string) (*model.CaseIngestionResult, error)
}

// Backend is a Store that can also be read and closed
type Backend interface {
	Store
	Reader
	Close() error
}

// Open creates the backend selected by cfg.Driver
func Open(ctx context.Context, cfg model.StoreConfig) (Backend, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(ctx, expandPath(cfg.DSN))
	case "postgres":
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// record is the row shape shared by all backends
type record struct {
	ID      string
	CaseID  string
	Payload []byte
}

func encode(kind Kind, id, caseID string, v interface{}) (record, error) {
	if id == "" {
		return record{}, fmt.Errorf("upsert %s: empty id", kind)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return record{}, fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	return record{ID: id, CaseID: caseID, Payload: payload}, nil
}

// recordsByKind holds the payloads of one case, keyed by entity id
type recordsByKind map[Kind]map[string][]byte

// assemble decodes a case and its entities, ordered by the id lists of the
// case file. Rows the case file no longer references are left out.
func assemble(caseID string, rows recordsByKind) (*model.CaseIngestionResult, error) {
	raw, ok := rows[KindCaseFile][caseID]
	if !ok {
		return nil, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}
	res := &model.CaseIngestionResult{}
	if err := json.Unmarshal(raw, &res.CaseFile); err != nil {
		return nil, fmt.Errorf("decode case file %s: %w", caseID, err)
	}
	cf := res.CaseFile

	var err error
	if res.Actors, err = decodeAll[model.CaseActor](KindActor, cf.ActorIDs, rows[KindActor]); err != nil {
		return nil, err
	}
	if res.Issues, err = decodeAll[model.CaseIssue](KindIssue, cf.IssueIDs, rows[KindIssue]); err != nil {
		return nil, err
	}
	if res.Deadlines, err = decodeAll[model.CaseDeadline](KindDeadline, cf.DeadlineIDs, rows[KindDeadline]); err != nil {
		return nil, err
	}
	if res.MemoryEvents, err = decodeAll[model.CaseMemoryEvent](KindMemoryEvent, cf.MemoryEventIDs, rows[KindMemoryEvent]); err != nil {
		return nil, err
	}
	return res, nil
}

func decodeAll[T any](kind Kind, ids []string, payloads map[string][]byte) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		raw, ok := payloads[id]
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", kind, id, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// expandPath expands ~ to home directory.
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
