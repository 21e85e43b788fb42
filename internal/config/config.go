// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-optimizer/internal/ats"
	"github.com/jonathan/resume-optimizer/internal/optimizer"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Job    string `json:"job,omitempty"`    // Path to job description (text or HTML)
	Resume string `json:"resume,omitempty"` // Path to base resume JSON
	Output string `json:"output,omitempty"` // Path for the optimized resume JSON

	// Providers
	APIKey         string `json:"api_key,omitempty"`         // Gemini API key
	Model          string `json:"model,omitempty"`           // Generation model override
	EmbeddingModel string `json:"embedding_model,omitempty"` // Embedding model override
	RedisURL       string `json:"redis_url,omitempty"`       // Shared embedding cache

	// Metrics sinks
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	SQLitePath  string `json:"sqlite_path,omitempty"`  // Local run history database

	// Loop
	MaxIterations        int          `json:"max_iterations,omitempty"`
	TargetScore          float64      `json:"target_score,omitempty"`
	ImprovementThreshold float64      `json:"improvement_threshold,omitempty"`
	TopKeywords          int          `json:"top_keywords,omitempty"`
	Weights              *ats.Weights `json:"weights,omitempty"` // ATS dimension weights

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print the iteration trace
}

// Defaults returns the settings used when neither flags nor a config file set a value
func Defaults() Config {
	opt := optimizer.DefaultConfig()
	return Config{
		MaxIterations:        opt.MaxIterations,
		TargetScore:          opt.TargetScore,
		ImprovementThreshold: opt.ImprovementThreshold,
		TopKeywords:          opt.TopKeywords,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required fields are checked by the CLI after merging.
func (c *Config) Validate() error {
	if c.MaxIterations < 0 {
		return fmt.Errorf("config error: 'max_iterations' must be non-negative")
	}
	if c.TopKeywords < 0 {
		return fmt.Errorf("config error: 'top_keywords' must be non-negative")
	}
	if c.TargetScore < 0 || c.TargetScore > 100 {
		return fmt.Errorf("config error: 'target_score' must be between 0 and 100")
	}
	if c.ImprovementThreshold < 0 {
		return fmt.Errorf("config error: 'improvement_threshold' must be non-negative")
	}
	if c.Weights != nil {
		if err := c.Weights.Validate(); err != nil {
			return fmt.Errorf("config error: 'weights': %w", err)
		}
	}

	for name, path := range map[string]string{"job": c.Job, "resume": c.Resume} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", name, path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.Resume == "" {
		result.Resume = defaults.Resume
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.EmbeddingModel == "" {
		result.EmbeddingModel = defaults.EmbeddingModel
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}

	// Numeric fields: use default if zero
	if result.MaxIterations == 0 {
		result.MaxIterations = defaults.MaxIterations
	}
	if result.TargetScore == 0 {
		result.TargetScore = defaults.TargetScore
	}
	if result.ImprovementThreshold == 0 {
		result.ImprovementThreshold = defaults.ImprovementThreshold
	}
	if result.TopKeywords == 0 {
		result.TopKeywords = defaults.TopKeywords
	}
	if result.Weights == nil && defaults.Weights != nil {
		w := *defaults.Weights
		result.Weights = &w
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ATSWeights returns the configured weights, or the documented defaults
func (c *Config) ATSWeights() ats.Weights {
	if c.Weights == nil || c.Weights.IsZero() {
		return ats.DefaultWeights()
	}
	return *c.Weights
}

// ToOptimizerConfig maps the loop settings onto an optimizer.Config.
// Zero values fall back to optimizer defaults.
func (c *Config) ToOptimizerConfig(meta types.RunMetadata) optimizer.Config {
	opt := optimizer.DefaultConfig()
	if c.MaxIterations > 0 {
		opt.MaxIterations = c.MaxIterations
	}
	if c.TargetScore > 0 {
		opt.TargetScore = c.TargetScore
	}
	if c.ImprovementThreshold > 0 {
		opt.ImprovementThreshold = c.ImprovementThreshold
	}
	if c.TopKeywords > 0 {
		opt.TopKeywords = c.TopKeywords
	}
	opt.Verbose = c.Verbose
	opt.Metadata = meta
	return opt
}
