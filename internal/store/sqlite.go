package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/casefile/internal/model"
)

// SQLiteStore implements Backend on a single SQLite file.
// Pass ":memory:" for in-memory databases (testing).
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (and migrates) the database at path
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: empty database path")
	}

	// Create parent directory for non-memory databases
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection: serialises the concurrent upserts and keeps a
	// ":memory:" database alive across calls.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for _, k := range Kinds {
		stmts := []string{
			// Actor ids are only unique within a case
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				case_id    TEXT NOT NULL,
				id         TEXT NOT NULL,
				payload    TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (case_id, id)
			)`, k.table()),
		}
		for _, stmt := range stmts {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", k.table(), err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) upsert(ctx context.Context, kind Kind, id, caseID string, v interface{}) error {
	rec, err := encode(kind, id, caseID, v)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, case_id, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(case_id, id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`, kind.table())
	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.CaseID, string(rec.Payload), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertCaseFile(ctx context.Context, cf model.CaseFile) error {
	return s.upsert(ctx, KindCaseFile, cf.ID, cf.ID, cf)
}

func (s *SQLiteStore) UpsertActor(ctx context.Context, a model.CaseActor) error {
	return s.upsert(ctx, KindActor, a.ID, a.CaseID, a)
}

func (s *SQLiteStore) UpsertIssue(ctx context.Context, i model.CaseIssue) error {
	return s.upsert(ctx, KindIssue, i.ID, i.CaseID, i)
}

func (s *SQLiteStore) UpsertDeadline(ctx context.Context, d model.CaseDeadline) error {
	return s.upsert(ctx, KindDeadline, d.ID, d.CaseID, d)
}

func (s *SQLiteStore) UpsertMemoryEvent(ctx context.Context, e model.CaseMemoryEvent) error {
	return s.upsert(ctx, KindMemoryEvent, e.ID, e.CaseID, e)
}

// LoadCase implements Reader
func (s *SQLiteStore) LoadCase(ctx context.Context, caseID string) (*model.CaseIngestionResult, error) {
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

func (s *SQLiteStore) payloads(ctx context.Context, kind Kind, caseID string) (map[string][]byte, error) {
	query := fmt.Sprintf(`SELECT id, payload FROM %s WHERE case_id = ?`, kind.table())
	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", kind.table(), err)
	}
	defer func() { _ = rows.Close() }()

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

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
