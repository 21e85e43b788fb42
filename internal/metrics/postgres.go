package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/jonathan/resume-optimizer/internal/db"
)

// RunStore is the storage PostgresRecorder uses. *db.DB satisfies it.
type RunStore interface {
	SaveOptimizationRun(ctx context.Context, run *db.OptimizationRun) error
	ListOptimizationRuns(ctx context.Context, limit int) ([]db.OptimizationRun, error)
}

// PostgresRecorder stores runs in the optimization_runs table
type PostgresRecorder struct {
	store RunStore
}

// NewPostgresRecorder creates a recorder backed by store
func NewPostgresRecorder(store RunStore) *PostgresRecorder {
	return &PostgresRecorder{store: store}
}

// Record converts the run to a database row and saves it
func (r *PostgresRecorder) Record(ctx context.Context, run Run) (string, error) {
	id, err := parseOrNewID(run.ID)
	if err != nil {
		return "", backoff.Permanent(err)
	}

	trace := json.RawMessage(run.Trace)
	if len(trace) == 0 {
		trace = json.RawMessage("[]")
	}

	row := &db.OptimizationRun{
		ID:            id,
		JobRef:        run.JobRef,
		ResumeRef:     run.ResumeRef,
		ModelInfo:     run.ModelInfo,
		TerminalState: run.TerminalState,
		Iterations:    run.Iterations,
		BaselineScore: run.BaselineScore,
		FinalScore:    run.FinalScore,
		Improvement:   run.Improvement,
		BestIteration: run.BestIteration,
		DurationMS:    run.Duration.Milliseconds(),
		Trace:         trace,
		CreatedAt:     run.CreatedAt,
	}
	if err := r.store.SaveOptimizationRun(ctx, row); err != nil {
		return "", err
	}
	return id.String(), nil
}

// List returns up to limit runs, newest first
func (r *PostgresRecorder) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.store.ListOptimizationRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	runs := make([]Run, 0, len(rows))
	for _, row := range rows {
		runs = append(runs, runFromRow(row))
	}
	return runs, nil
}

func runFromRow(row db.OptimizationRun) Run {
	return Run{
		ID:            row.ID.String(),
		JobRef:        row.JobRef,
		ResumeRef:     row.ResumeRef,
		ModelInfo:     row.ModelInfo,
		TerminalState: row.TerminalState,
		Iterations:    row.Iterations,
		BaselineScore: row.BaselineScore,
		FinalScore:    row.FinalScore,
		Improvement:   row.Improvement,
		BestIteration: row.BestIteration,
		Duration:      time.Duration(row.DurationMS) * time.Millisecond,
		Trace:         row.Trace,
		CreatedAt:     row.CreatedAt,
	}
}

func parseOrNewID(id string) (uuid.UUID, error) {
	if id == "" {
		return uuid.New(), nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("run id %q is not a UUID: %w", id, err)
	}
	return parsed, nil
}
