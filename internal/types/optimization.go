// Package types provides type definitions for structured data used throughout the resume-optimizer system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// KeywordSet is an ordered list of distinct lowercase keywords, most frequent first
type KeywordSet []string

// Contains reports whether the set holds the keyword
func (k KeywordSet) Contains(keyword string) bool {
	for _, kw := range k {
		if kw == keyword {
			return true
		}
	}
	return false
}

// EmbeddingVector is a fixed-length numeric representation of a text
type EmbeddingVector []float64

// SimilarityResult blends semantic and lexical fit between a resume and a job description
type SimilarityResult struct {
	Score           float64        `json:"score"`
	Cosine          float64        `json:"cosine"`
	KeywordScore    float64        `json:"keyword_score"`
	MatchedKeywords KeywordSet     `json:"matched_keywords"`
	MissingKeywords KeywordSet     `json:"missing_keywords"`
	KeywordDensity  map[string]int `json:"keyword_density"`
}

// FitScore is the deterministic ATS rubric result for one resume
type FitScore struct {
	TotalScore      float64            `json:"total_score"`
	KeywordCoverage float64            `json:"keyword_coverage"`
	Breakdown       map[string]float64 `json:"breakdown"`
	Recommendations []string           `json:"recommendations"`
	MissingKeywords KeywordSet         `json:"missing_keywords,omitempty"`
}

// IterationRecord captures one scored resume in an optimization run.
// Records are appended to the run history and never modified afterwards.
type IterationRecord struct {
	Iteration        int              `json:"iteration"`
	Resume           *ResumeDocument  `json:"resume"`
	Similarity       SimilarityResult `json:"similarity"`
	Fit              FitScore         `json:"fit"`
	CombinedScore    float64          `json:"combined_score"`
	ImprovementDelta float64          `json:"improvement_delta"`
	Feedback         string           `json:"feedback"`
	CreatedAt        time.Time        `json:"created_at"`
}

// TerminalState describes why an optimization run stopped
type TerminalState string

const (
	// StateConverged means the target score was reached
	StateConverged TerminalState = "converged"
	// StateExhausted means the iteration cap was hit
	StateExhausted TerminalState = "exhausted"
	// StatePlateaued means a revision improved less than the threshold
	StatePlateaued TerminalState = "plateaued"
	// StateRevisionFailed means the revision step errored or returned an invalid resume
	StateRevisionFailed TerminalState = "revision-failed"
	// StateCancelled means the caller's context ended the run early
	StateCancelled TerminalState = "cancelled"
)

// OptimizationResult is the complete outcome of one optimization run.
// FinalResume and FinalScore come from the best-scoring iteration, not necessarily the last.
type OptimizationResult struct {
	Iterations    []IterationRecord `json:"iterations"`
	FinalResume   *ResumeDocument   `json:"final_resume"`
	FinalScore    float64           `json:"final_score"`
	Improvement   float64           `json:"improvement"`
	BestIteration int               `json:"best_iteration"`
	TerminalState TerminalState     `json:"terminal_state"`
	RecordID      string            `json:"record_id,omitempty"`
	Duration      time.Duration     `json:"duration"`
}

// Best returns the record FinalResume was taken from
func (r *OptimizationResult) Best() *IterationRecord {
	if r == nil || r.BestIteration < 0 || r.BestIteration >= len(r.Iterations) {
		return nil
	}
	return &r.Iterations[r.BestIteration]
}

// Baseline returns the iteration 0 record
func (r *OptimizationResult) Baseline() *IterationRecord {
	if r == nil || len(r.Iterations) == 0 {
		return nil
	}
	return &r.Iterations[0]
}

// RunMetadata identifies the inputs of a run for analytics
type RunMetadata struct {
	JobRef    string `json:"job_ref,omitempty"`
	ResumeRef string `json:"resume_ref,omitempty"`
	ModelInfo string `json:"model_info,omitempty"`
}
