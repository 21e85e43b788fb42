package db

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	db, err := Connect(ctx, dbURL)
	if err != nil {
		t.Skipf("Skipping integration test: failed to connect to DB: %v", err)
	}
	require.NoError(t, db.EnsureSchema(ctx))
	return db
}

func TestOptimizationRunsSchema(t *testing.T) {
	assert.True(t, strings.HasPrefix(optimizationRunsSchema, "CREATE TABLE IF NOT EXISTS optimization_runs"))
	for _, column := range []string{"terminal_state", "baseline_score", "final_score", "trace", "created_at"} {
		assert.Contains(t, optimizationRunsSchema, column)
	}
}

func TestOptimizationRun_JSON(t *testing.T) {
	run := OptimizationRun{
		ID:            uuid.MustParse("6f1c1d3e-8c1a-4a59-9f77-1d2b3c4d5e6f"),
		TerminalState: "converged",
		Trace:         json.RawMessage(`[{"iteration":0}]`),
	}

	data, err := json.Marshal(run)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trace":[{"iteration":0}]`)
	assert.Contains(t, string(data), `"terminal_state":"converged"`)
}

func TestSaveOptimizationRun_Nil(t *testing.T) {
	var db DB
	assert.Error(t, db.SaveOptimizationRun(context.Background(), nil))
}

func TestOptimizationRun_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	run := &OptimizationRun{
		JobRef:        "job-1",
		ResumeRef:     "resume-1",
		ModelInfo:     "gemini/gemini-2.5-pro+text-embedding-004",
		TerminalState: "plateaued",
		Iterations:    3,
		BaselineScore: 55.5,
		FinalScore:    71.25,
		Improvement:   15.75,
		BestIteration: 2,
		DurationMS:    1200,
		Trace:         json.RawMessage(`[{"iteration": 0}]`),
	}
	require.NoError(t, db.SaveOptimizationRun(ctx, run))
	require.NotEqual(t, uuid.Nil, run.ID)

	// Saving the same ID again is a no-op
	require.NoError(t, db.SaveOptimizationRun(ctx, run))

	got, err := db.GetOptimizationRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "plateaued", got.TerminalState)
	assert.Equal(t, 71.25, got.FinalScore)
	assert.JSONEq(t, `[{"iteration": 0}]`, string(got.Trace))

	missing, err := db.GetOptimizationRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	runs, err := db.ListOptimizationRuns(ctx, 5)
	require.NoError(t, err)
	assert.NotEmpty(t, runs)
}
