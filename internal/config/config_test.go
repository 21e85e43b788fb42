package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/ats"
	"github.com/jonathan/resume-optimizer/internal/optimizer"
	"github.com/jonathan/resume-optimizer/internal/types"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"job": "job.html",
		"resume": "resume.json",
		"sqlite_path": "runs.db",
		"max_iterations": 5,
		"target_score": 90,
		"weights": {"keyword_match": 0.5, "section_presence": 0.5},
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "job.html", cfg.Job)
	assert.Equal(t, "resume.json", cfg.Resume)
	assert.Equal(t, "runs.db", cfg.SQLitePath)
	assert.Equal(t, 5, cfg.MaxIterations)
	assert.Equal(t, 90.0, cfg.TargetScore)
	require.NotNil(t, cfg.Weights)
	assert.Equal(t, 0.5, cfg.Weights.KeywordMatch)
	assert.Zero(t, cfg.Weights.Achievements)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(existing, []byte("Go engineer"), 0644))

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty config", Config{}, ""},
		{"valid", Config{Job: existing, MaxIterations: 3, TargetScore: 85}, ""},
		{"negative iterations", Config{MaxIterations: -1}, "max_iterations"},
		{"negative keywords", Config{TopKeywords: -2}, "top_keywords"},
		{"target too high", Config{TargetScore: 120}, "target_score"},
		{"negative threshold", Config{ImprovementThreshold: -1}, "improvement_threshold"},
		{"negative weight", Config{Weights: &ats.Weights{KeywordMatch: -1, SummaryLength: 1}}, "weights"},
		{"all zero weights", Config{Weights: &ats.Weights{}}, "weights"},
		{"missing job file", Config{Job: "/nonexistent/job.txt"}, "job file not found"},
		{"missing resume file", Config{Resume: "/nonexistent/resume.json"}, "resume file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_WeightsErrorUnwraps(t *testing.T) {
	cfg := Config{Weights: &ats.Weights{Quantification: -0.1, KeywordMatch: 1}}

	var wErr *ats.WeightsError
	assert.True(t, errors.As(cfg.Validate(), &wErr))
}

func TestMergeWithDefaults(t *testing.T) {
	weights := ats.DefaultWeights()
	defaults := Config{
		Resume:        "default.json",
		SQLitePath:    "default.db",
		MaxIterations: 3,
		TargetScore:   85,
		Weights:       &weights,
	}

	partial := Config{
		Job:           "job.txt",
		MaxIterations: 7,
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, "job.txt", merged.Job)
	assert.Equal(t, 7, merged.MaxIterations)

	// Default values should fill in empty fields
	assert.Equal(t, "default.json", merged.Resume)
	assert.Equal(t, "default.db", merged.SQLitePath)
	assert.Equal(t, 85.0, merged.TargetScore)
	require.NotNil(t, merged.Weights)
	assert.Equal(t, weights, *merged.Weights)

	merged.Weights.KeywordMatch = 0.9
	assert.Equal(t, 0.40, defaults.Weights.KeywordMatch)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{Job: "job.txt", TopKeywords: 15}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, "job.txt", merged.Job)
	assert.Equal(t, 15, merged.TopKeywords)
	assert.Nil(t, merged.Weights)
}

func TestATSWeights(t *testing.T) {
	assert.Equal(t, ats.DefaultWeights(), (&Config{}).ATSWeights())
	assert.Equal(t, ats.DefaultWeights(), (&Config{Weights: &ats.Weights{}}).ATSWeights())

	custom := ats.Weights{KeywordMatch: 1}
	assert.Equal(t, custom, (&Config{Weights: &custom}).ATSWeights())
}

func TestToOptimizerConfig(t *testing.T) {
	meta := types.RunMetadata{JobRef: "job.txt"}

	t.Run("zero values use defaults", func(t *testing.T) {
		got := (&Config{}).ToOptimizerConfig(meta)
		want := optimizer.DefaultConfig()
		want.Metadata = meta

		assert.Equal(t, want, got)
		assert.NoError(t, got.Validate())
	})

	t.Run("overrides", func(t *testing.T) {
		cfg := Config{MaxIterations: 6, TargetScore: 92, ImprovementThreshold: 1.5, TopKeywords: 12, Verbose: true}
		got := cfg.ToOptimizerConfig(meta)

		assert.Equal(t, 6, got.MaxIterations)
		assert.Equal(t, 92.0, got.TargetScore)
		assert.Equal(t, 1.5, got.ImprovementThreshold)
		assert.Equal(t, 12, got.TopKeywords)
		assert.True(t, got.Verbose)
		assert.Equal(t, "job.txt", got.Metadata.JobRef)
	})
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, optimizer.DefaultMaxIterations, d.MaxIterations)
	assert.Equal(t, optimizer.DefaultTargetScore, d.TargetScore)
	assert.NoError(t, d.Validate())
}
