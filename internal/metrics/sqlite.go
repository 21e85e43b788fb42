package metrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS optimization_runs (
	id              TEXT PRIMARY KEY,
	job_ref         TEXT NOT NULL DEFAULT '',
	resume_ref      TEXT NOT NULL DEFAULT '',
	model_info      TEXT NOT NULL DEFAULT '',
	terminal_state  TEXT NOT NULL,
	iterations      INTEGER NOT NULL,
	baseline_score  REAL NOT NULL,
	final_score     REAL NOT NULL,
	improvement     REAL NOT NULL,
	best_iteration  INTEGER NOT NULL,
	duration_ms     INTEGER NOT NULL,
	trace           TEXT NOT NULL DEFAULT '[]',
	created_at      TEXT NOT NULL
)`

// sqliteTimeFormat is fixed width so created_at sorts as text
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRecorder stores runs in a local SQLite database
type SQLiteRecorder struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRecorder, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("metrics: mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("metrics: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("metrics: init schema: %w", err)
	}

	return &SQLiteRecorder{db: db}, nil
}

// Record inserts the run, ignoring a duplicate ID so retries are safe
func (r *SQLiteRecorder) Record(ctx context.Context, run Run) (string, error) {
	run.ID = ensureID(run.ID)
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	trace := string(run.Trace)
	if trace == "" {
		trace = "[]"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO optimization_runs
		   (id, job_ref, resume_ref, model_info, terminal_state, iterations,
		    baseline_score, final_score, improvement, best_iteration, duration_ms, trace, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.JobRef, run.ResumeRef, run.ModelInfo, run.TerminalState, run.Iterations,
		run.BaselineScore, run.FinalScore, run.Improvement, run.BestIteration,
		run.Duration.Milliseconds(), trace, run.CreatedAt.UTC().Format(sqliteTimeFormat),
	)
	if err != nil {
		return "", fmt.Errorf("metrics: insert run %s: %w", run.ID, err)
	}
	return run.ID, nil
}

// Get returns a stored run, or nil if it does not exist
func (r *SQLiteRecorder) Get(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx, selectRunColumns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: get run %s: %w", id, err)
	}
	return run, nil
}

// List returns the most recent runs, newest first
func (r *SQLiteRecorder) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, selectRunColumns+` ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("metrics: list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("metrics: scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Close closes the database
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

const selectRunColumns = `SELECT id, job_ref, resume_ref, model_info, terminal_state, iterations,
	baseline_score, final_score, improvement, best_iteration, duration_ms, trace, created_at
	FROM optimization_runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		durationMS int64
		trace      string
		createdAt  string
	)
	err := row.Scan(&run.ID, &run.JobRef, &run.ResumeRef, &run.ModelInfo, &run.TerminalState, &run.Iterations,
		&run.BaselineScore, &run.FinalScore, &run.Improvement, &run.BestIteration, &durationMS, &trace, &createdAt)
	if err != nil {
		return nil, err
	}

	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Trace = []byte(trace)
	if t, err := time.Parse(sqliteTimeFormat, createdAt); err == nil {
		run.CreatedAt = t
	}
	return &run, nil
}
