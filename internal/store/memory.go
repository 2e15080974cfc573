package store

import (
	"context"
	"sync"

	"github.com/ppiankov/casefile/internal/model"
)

// MemoryStore keeps encoded entities in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[Kind]map[rowKey]record
}

// rowKey scopes an entity id to its case
type rowKey struct {
	caseID string
	id     string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	rows := make(map[Kind]map[rowKey]record, len(Kinds))
	for _, k := range Kinds {
		rows[k] = make(map[rowKey]record)
	}
	return &MemoryStore{rows: rows}
}

func (s *MemoryStore) put(ctx context.Context, kind Kind, id, caseID string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, err := encode(kind, id, caseID, v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[kind][rowKey{caseID: caseID, id: id}] = rec
	return nil
}

func (s *MemoryStore) UpsertCaseFile(ctx context.Context, cf model.CaseFile) error {
	return s.put(ctx, KindCaseFile, cf.ID, cf.ID, cf)
}

func (s *MemoryStore) UpsertActor(ctx context.Context, a model.CaseActor) error {
	return s.put(ctx, KindActor, a.ID, a.CaseID, a)
}

func (s *MemoryStore) UpsertIssue(ctx context.Context, i model.CaseIssue) error {
	return s.put(ctx, KindIssue, i.ID, i.CaseID, i)
}

func (s *MemoryStore) UpsertDeadline(ctx context.Context, d model.CaseDeadline) error {
	return s.put(ctx, KindDeadline, d.ID, d.CaseID, d)
}

func (s *MemoryStore) UpsertMemoryEvent(ctx context.Context, e model.CaseMemoryEvent) error {
	return s.put(ctx, KindMemoryEvent, e.ID, e.CaseID, e)
}

// LoadCase implements Reader
func (s *MemoryStore) LoadCase(ctx context.Context, caseID string) (*model.CaseIngestionResult, error) {
	s.mu.RLock()
	rows := make(recordsByKind, len(Kinds))
	for _, k := range Kinds {
		rows[k] = make(map[string][]byte)
		for key, rec := range s.rows[k] {
			if key.caseID == caseID {
				rows[k][key.id] = rec.Payload
			}
		}
	}
	s.mu.RUnlock()
	return assemble(caseID, rows)
}

// Count returns the number of stored entities of one kind
func (s *MemoryStore) Count(kind Kind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows[kind])
}

// Close implements Backend
func (s *MemoryStore) Close() error {
	return nil
}
