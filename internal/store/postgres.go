package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppiankov/casefile/internal/model"
)

// PostgresStore implements Backend on a pgx connection pool, one jsonb
// payload table per entity kind
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the tables if needed
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: empty dsn")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &PostgresStore{db: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, k := range Kinds {
		stmts := []string{
			// Actor ids are only unique within a case
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				case_id    TEXT NOT NULL,
				id         TEXT NOT NULL,
				payload    JSONB NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (case_id, id)
			)`, k.table()),
		}
		for _, stmt := range stmts {
			if _, err := s.db.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", k.table(), err)
			}
		}
	}
	return nil
}

func (s *PostgresStore) upsert(ctx context.Context, kind Kind, id, caseID string, v interface{}) error {
	rec, err := encode(kind, id, caseID, v)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, case_id, payload, updated_at) VALUES ($1, $2, $3::jsonb, now())
		ON CONFLICT (case_id, id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = now()`, kind.table())
	if _, err := s.db.Exec(ctx, query, rec.ID, rec.CaseID, string(rec.Payload)); err != nil {
		return fmt.Errorf("upsert %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *PostgresStore) UpsertCaseFile(ctx context.Context, cf model.CaseFile) error {
	return s.upsert(ctx, KindCaseFile, cf.ID, cf.ID, cf)
}

func (s *PostgresStore) UpsertActor(ctx context.Context, a model.CaseActor) error {
	return s.upsert(ctx, KindActor, a.ID, a.CaseID, a)
}

func (s *PostgresStore) UpsertIssue(ctx context.Context, i model.CaseIssue) error {
	return s.upsert(ctx, KindIssue, i.ID, i.CaseID, i)
}

func (s *PostgresStore) UpsertDeadline(ctx context.Context, d model.CaseDeadline) error {
	return s.upsert(ctx, KindDeadline, d.ID, d.CaseID, d)
}

func (s *PostgresStore) UpsertMemoryEvent(ctx context.Context, e model.CaseMemoryEvent) error {
	return s.upsert(ctx, KindMemoryEvent, e.ID, e.CaseID, e)
}

// LoadCase implements Reader
func (s *PostgresStore) LoadCase(ctx context.Context, caseID string) (*model.CaseIngestionResult, error) {
	rows := make(recordsByKind, len(Kinds))
	for _, k := range Kinds {
		payloads, err := s.payloads(ctx, k, caseID)
		if err != nil {
			return nil, err
		}
		rows[k] = payloads
	}
	return assemble(caseID, rows)
}

func (s *PostgresStore) payloads(ctx context.Context, kind Kind, caseID string) (map[string][]byte, error) {
	query := fmt.Sprintf(`SELECT id, payload::text FROM %s WHERE case_id = $1`, kind.table())
	rows, err := s.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind.table(), err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind.table(), err)
		}
		out[id] = []byte(payload)
	}
	return out, rows.Err()
}

// Close releases the pool
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
