// Package sqlite implements the run-record store on an embedded SQLite
// database via the pure-Go modernc.org driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agenthive/hive/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	operation TEXT NOT NULL,
	status TEXT NOT NULL,
	subtask_count INTEGER NOT NULL DEFAULT 0,
	success_rate REAL NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Store is a SQLite-backed run-record store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at dbPath and prepares
// the schema.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare schema: %w", err)
	}

	return &Store{db: db}, nil
}

// SaveRun implements store.Store.
func (s *Store) SaveRun(ctx context.Context, rec store.RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
			(id, task_id, operation, status, subtask_count, success_rate, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TaskID, rec.Operation, rec.Status,
		rec.SubtaskCount, rec.SuccessRate, rec.Duration.Milliseconds(), rec.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

// GetRun implements store.Store.
func (s *Store) GetRun(ctx context.Context, id string) (store.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, operation, status, subtask_count, success_rate, duration_ms, created_at
		FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return rec, nil
}

// ListRuns implements store.Store.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	query := `
		SELECT id, task_id, operation, status, subtask_count, success_rate, duration_ms, created_at
		FROM runs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []store.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close implements store.Store.
func (s *Store) Close() error { return s.db.Close() }

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (store.RunRecord, error) {
	var (
		rec        store.RunRecord
		durationMS int64
		createdAt  int64
	)
	err := row.Scan(&rec.ID, &rec.TaskID, &rec.Operation, &rec.Status,
		&rec.SubtaskCount, &rec.SuccessRate, &durationMS, &createdAt)
	if err != nil {
		return store.RunRecord{}, err
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt = time.UnixMilli(createdAt)
	return rec, nil
}
