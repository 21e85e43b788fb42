package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/ingestion"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/types"
)

func TestLoadResume(t *testing.T) {
	doc, err := loadResume(testdataPath("resume.json"))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", doc.Contact.Name)
	assert.Len(t, doc.Experience, 1)
	assert.Equal(t, []string{"Docker", "Go", "Kubernetes", "Python", "SQL"}, doc.Skills.List())
}

func TestLoadResume_Errors(t *testing.T) {
	dir := t.TempDir()

	schemaInvalid := filepath.Join(dir, "no_experience.json")
	require.NoError(t, os.WriteFile(schemaInvalid, []byte(`{"contact":{"name":"A"},"summary":"x","experience":[],"skills":"Go"}`), 0644))

	markup := filepath.Join(dir, "markup.json")
	require.NoError(t, os.WriteFile(markup, []byte(`{"contact":{"name":"A"},"summary":"<b>x</b>","experience":[{"title":"T","company":"C","achievements":[]}],"skills":"Go"}`), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing file", filepath.Join(dir, "missing.json"), "failed to read resume file"},
		{"schema violation", schemaInvalid, "does not match schema"},
		{"struct rule violation", markup, "invalid resume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := loadResume(tt.path)
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadJob(t *testing.T) {
	text, meta, err := loadJob(testdataPath("job.html"))
	require.NoError(t, err)

	assert.Contains(t, text, "# Senior Backend Engineer")
	assert.Contains(t, text, "- 5+ years of Go")
	assert.NotContains(t, text, "Careers")
	assert.Contains(t, meta.Ref(), "job.html@")

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n "), 0644))
	_, _, err = loadJob(empty)
	assert.ErrorContains(t, err, "is empty")
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")

	assert.Equal(t, "from-flag", resolveAPIKey("from-flag"))
	assert.Equal(t, "from-env", resolveAPIKey(""))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")

	require.NoError(t, writeJSON(path, map[string]int{"score": 90}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":90}`, string(data))
}

func TestNewEncoder_WithoutClient(t *testing.T) {
	encoder, cleanup := newEncoder(context.Background(), nil, "", zap.NewNop())
	defer cleanup()

	vector := encoder.Embed(context.Background(), "go engineer")
	assert.NotEmpty(t, vector)
	assert.Equal(t, int64(1), encoder.Stats().Fallbacks)
}

func TestNewEncoder_UnreachableRedis(t *testing.T) {
	encoder, cleanup := newEncoder(context.Background(), nil, "redis://127.0.0.1:1/0", zap.NewNop())
	defer cleanup()

	assert.NotEmpty(t, encoder.Embed(context.Background(), "go engineer"))
}

func TestNewRecorder_NoStore(t *testing.T) {
	recorder, closeFn, err := newRecorder(context.Background(), "", "", zap.NewNop())
	require.NoError(t, err)

	assert.IsType(t, metrics.NopRecorder{}, recorder)
	assert.NoError(t, closeFn())
}

func TestNewRecorder_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs", "history.db")

	recorder, closeFn, err := newRecorder(ctx, "", path, zap.NewNop())
	require.NoError(t, err)

	id, err := recorder.Record(ctx, metrics.Run{TerminalState: string(types.StateConverged), FinalScore: 88})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.NoError(t, closeFn())

	store, closer, err := openRunStore(ctx, "", path)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	runs, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 88.0, runs[0].FinalScore)
}

func TestOptimizeReport_JSON(t *testing.T) {
	report := optimizeReport{
		Job:    ingestion.NewMetadata("Go engineer", "job.txt"),
		Result: &types.OptimizationResult{TerminalState: types.StateExhausted},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"terminal_state":"exhausted"`)
	assert.Contains(t, string(data), `"analysis"`)
	assert.Contains(t, string(data), `"source":"job.txt"`)
}
