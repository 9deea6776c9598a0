// Package diagstore persists diagnostics rows so failed calls can be
// inspected after a run.
package diagstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/specialistvlad/primcall/internal/ctxlog"
	"github.com/specialistvlad/primcall/internal/sink"
	"github.com/specialistvlad/primcall/internal/value"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS diagnostics (
	run_id     TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	source     TEXT    NOT NULL,
	message    TEXT    NOT NULL,
	created_at TEXT    NOT NULL,
	PRIMARY KEY (run_id, seq)
)`

// Record is one stored diagnostic.
type Record struct {
	RunID     string
	Seq       int
	Source    string
	Message   string
	CreatedAt time.Time
}

// Store is a SQLite-backed diagnostics table.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and ensures the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagnostics database %s: %w", path, err)
	}
	// One writer keeps SQLite free of lock contention.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create diagnostics schema: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Diagnostics store opened.", "path", path)
	return &Store{db: db, now: time.Now}, nil
}

// Save writes rows under runID in one transaction, numbering them from 0 in
// the order given.
func (s *Store) Save(ctx context.Context, runID string, rows []value.Row) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO diagnostics (run_id, seq, source, message, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	createdAt := s.now().UTC().Format(time.RFC3339Nano)
	for i, row := range rows {
		if _, err = stmt.ExecContext(ctx, runID, i, sink.Source(row), sink.Message(row), createdAt); err != nil {
			return fmt.Errorf("failed to insert diagnostic %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit diagnostics: %w", err)
	}
	ctxlog.FromContext(ctx).Debug("Diagnostics saved.", "run_id", runID, "rows", len(rows))
	return nil
}

// List returns the diagnostics of runID in insertion order.
func (s *Store) List(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, seq, source, message, created_at FROM diagnostics WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var created string
		if err := rows.Scan(&r.RunID, &r.Seq, &r.Source, &r.Message, &created); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("diagnostic %d has a bad timestamp: %w", r.Seq, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
