package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const optimizationRunsSchema = `CREATE TABLE IF NOT EXISTS optimization_runs (
	id              UUID PRIMARY KEY,
	job_ref         TEXT NOT NULL DEFAULT '',
	resume_ref      TEXT NOT NULL DEFAULT '',
	model_info      TEXT NOT NULL DEFAULT '',
	terminal_state  TEXT NOT NULL,
	iterations      INTEGER NOT NULL,
	baseline_score  DOUBLE PRECISION NOT NULL,
	final_score     DOUBLE PRECISION NOT NULL,
	improvement     DOUBLE PRECISION NOT NULL,
	best_iteration  INTEGER NOT NULL,
	duration_ms     BIGINT NOT NULL,
	trace           JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// OptimizationRun is one row of optimization_runs
type OptimizationRun struct {
	ID            uuid.UUID       `json:"id"`
	JobRef        string          `json:"job_ref"`
	ResumeRef     string          `json:"resume_ref"`
	ModelInfo     string          `json:"model_info"`
	TerminalState string          `json:"terminal_state"`
	Iterations    int             `json:"iterations"`
	BaselineScore float64         `json:"baseline_score"`
	FinalScore    float64         `json:"final_score"`
	Improvement   float64         `json:"improvement"`
	BestIteration int             `json:"best_iteration"`
	DurationMS    int64           `json:"duration_ms"`
	Trace         json.RawMessage `json:"trace"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaveOptimizationRun inserts a run. Saving the same ID twice is a no-op,
// so retried writes are safe.
func (db *DB) SaveOptimizationRun(ctx context.Context, run *OptimizationRun) error {
	if run == nil {
		return fmt.Errorf("optimization run is nil")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	trace := run.Trace
	if len(trace) == 0 {
		trace = json.RawMessage("[]")
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO optimization_runs
		   (id, job_ref, resume_ref, model_info, terminal_state, iterations,
		    baseline_score, final_score, improvement, best_iteration, duration_ms, trace)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO NOTHING`,
		run.ID, run.JobRef, run.ResumeRef, run.ModelInfo, run.TerminalState, run.Iterations,
		run.BaselineScore, run.FinalScore, run.Improvement, run.BestIteration, run.DurationMS, []byte(trace),
	)
	if err != nil {
		return fmt.Errorf("failed to save optimization run %s: %w", run.ID, err)
	}
	return nil
}

// GetOptimizationRun returns a run by ID, or nil if it does not exist
func (db *DB) GetOptimizationRun(ctx context.Context, id uuid.UUID) (*OptimizationRun, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, job_ref, resume_ref, model_info, terminal_state, iterations,
		        baseline_score, final_score, improvement, best_iteration, duration_ms, trace, created_at
		 FROM optimization_runs WHERE id = $1`,
		id,
	)

	run, err := scanOptimizationRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get optimization run %s: %w", id, err)
	}
	return run, nil
}

// ListOptimizationRuns returns the most recent runs, newest first
func (db *DB) ListOptimizationRuns(ctx context.Context, limit int) ([]OptimizationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, job_ref, resume_ref, model_info, terminal_state, iterations,
		        baseline_score, final_score, improvement, best_iteration, duration_ms, trace, created_at
		 FROM optimization_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimization runs: %w", err)
	}
	defer rows.Close()

	var runs []OptimizationRun
	for rows.Next() {
		run, err := scanOptimizationRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimization run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate optimization runs: %w", err)
	}
	return runs, nil
}

func scanOptimizationRun(row pgx.Row) (*OptimizationRun, error) {
	var run OptimizationRun
	var trace []byte
	err := row.Scan(
		&run.ID, &run.JobRef, &run.ResumeRef, &run.ModelInfo, &run.TerminalState, &run.Iterations,
		&run.BaselineScore, &run.FinalScore, &run.Improvement, &run.BestIteration, &run.DurationMS,
		&trace, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Trace = json.RawMessage(trace)
	return &run, nil
}
