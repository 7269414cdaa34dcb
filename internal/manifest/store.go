// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest records the outcome of every conversion run in a SQLite
// database so a later invocation can report what was written and what
// failed.
package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/wxr2md/internal/acquire"
)

// DefaultPath is the manifest location used when none is configured.
const DefaultPath = ".wxr2md/manifest.db"

// ErrNoRuns is returned by LastRun when nothing has been recorded.
var ErrNoRuns = errors.New("no runs recorded")

// Store manages the manifest database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the manifest database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			input TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS batches (
			run_id TEXT NOT NULL REFERENCES runs(id),
			name TEXT NOT NULL,
			written INTEGER,
			skipped INTEGER,
			regenerated INTEGER,
			failed INTEGER,
			PRIMARY KEY (run_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id TEXT NOT NULL REFERENCES runs(id),
			batch TEXT NOT NULL,
			label TEXT,
			dest TEXT,
			size INTEGER,
			regenerated INTEGER,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records the start of a run and returns its id.
func (s *Store) BeginRun(ctx context.Context, input string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, started_at) VALUES (?, ?, ?)`,
		id, input, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// RecordBatch stores the counts and per-item outcomes of one batch.
func (s *Store) RecordBatch(ctx context.Context, runID, name string, res acquire.BatchResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (run_id, name, written, skipped, regenerated, failed)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, name) DO UPDATE SET
			written=excluded.written, skipped=excluded.skipped,
			regenerated=excluded.regenerated, failed=excluded.failed`,
		runID, name, res.Written, res.Skipped, res.Regenerated, res.Failed)
	if err != nil {
		return fmt.Errorf("inserting batch %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, batch, label, dest, size, regenerated, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range res.Outcomes {
		var errText sql.NullString
		if o.Err != nil {
			errText = sql.NullString{String: o.Err.Error(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, name, o.Label, o.Dest, o.Size, o.Regenerated, errText); err != nil {
			return fmt.Errorf("inserting outcome %s: %w", o.Label, err)
		}
	}
	return tx.Commit()
}

// FinishRun stamps the end time of a run.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), runID)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	return nil
}

// Batch is the stored summary of one batch.
type Batch struct {
	Name        string
	Written     int
	Skipped     int
	Regenerated int
	Failed      int
}

// Run is the stored summary of one conversion run.
type Run struct {
	ID       string
	Input    string
	Started  time.Time
	Finished time.Time // zero while the run is in progress or was interrupted
	Batches  []Batch
}

// Failure is a failed item of a run.
type Failure struct {
	Batch string
	Label string
	Dest  string
	Error string
}

// LastRun returns the most recently started run.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	var (
		r        Run
		started  string
		finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, input, started_at, finished_at FROM runs ORDER BY seq DESC LIMIT 1`,
	).Scan(&r.ID, &r.Input, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("querying last run: %w", err)
	}
	r.Started, _ = time.Parse(time.RFC3339Nano, started)
	if finished.Valid {
		r.Finished, _ = time.Parse(time.RFC3339Nano, finished.String)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, written, skipped, regenerated, failed FROM batches WHERE run_id = ? ORDER BY rowid`, r.ID)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b Batch
		if err := rows.Scan(&b.Name, &b.Written, &b.Skipped, &b.Regenerated, &b.Failed); err != nil {
			return nil, fmt.Errorf("scanning batch: %w", err)
		}
		r.Batches = append(r.Batches, b)
	}
	return &r, rows.Err()
}

// Failures returns the failed items of a run in recording order.
func (s *Store) Failures(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch, label, dest, error FROM outcomes
		 WHERE run_id = ? AND error IS NOT NULL ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.Batch, &f.Label, &f.Dest, &f.Error); err != nil {
			return nil, fmt.Errorf("scanning failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
