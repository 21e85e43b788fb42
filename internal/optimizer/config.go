package optimizer

import (
	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Defaults for Config
const (
	DefaultMaxIterations        = 3
	DefaultTargetScore          = 85.0
	DefaultImprovementThreshold = 5.0
)

// Config controls one optimization run
type Config struct {
	// MaxIterations caps revision attempts after the baseline
	MaxIterations int
	// TargetScore stops the run once a combined score reaches it (0-100)
	TargetScore float64
	// ImprovementThreshold is the minimum gain that justifies another revision
	ImprovementThreshold float64
	// TopKeywords is how many job keywords are targeted
	TopKeywords int
	// Verbose logs each iteration at info level instead of debug
	Verbose bool
	// Metadata is passed through to the metrics recorder
	Metadata types.RunMetadata
}

// DefaultConfig returns the standard settings
func DefaultConfig() Config {
	return Config{
		MaxIterations:        DefaultMaxIterations,
		TargetScore:          DefaultTargetScore,
		ImprovementThreshold: DefaultImprovementThreshold,
		TopKeywords:          keywords.DefaultTopN,
	}
}

// Validate rejects settings that are programming errors
func (c Config) Validate() error {
	if c.MaxIterations < 1 {
		return &ConfigError{Field: "MaxIterations", Message: "must be at least 1"}
	}
	if c.TargetScore < 0 || c.TargetScore > 100 {
		return &ConfigError{Field: "TargetScore", Message: "must be between 0 and 100"}
	}
	if c.ImprovementThreshold < 0 {
		return &ConfigError{Field: "ImprovementThreshold", Message: "must not be negative"}
	}
	if c.TopKeywords < 0 {
		return &ConfigError{Field: "TopKeywords", Message: "must not be negative"}
	}
	return nil
}
