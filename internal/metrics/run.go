// Package metrics records completed optimization runs for later analysis.
// Recording is fire-and-forget: failures are logged and never affect the run result.
package metrics

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// Run is an immutable summary of one optimization run
type Run struct {
	ID            string          `json:"id"`
	JobRef        string          `json:"job_ref,omitempty"`
	ResumeRef     string          `json:"resume_ref,omitempty"`
	ModelInfo     string          `json:"model_info,omitempty"`
	TerminalState string          `json:"terminal_state"`
	Iterations    int             `json:"iterations"`
	BaselineScore float64         `json:"baseline_score"`
	FinalScore    float64         `json:"final_score"`
	Improvement   float64         `json:"improvement"`
	BestIteration int             `json:"best_iteration"`
	Duration      time.Duration   `json:"duration"`
	Trace         json.RawMessage `json:"trace,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TraceEntry is the per-iteration part of the stored trace
type TraceEntry struct {
	Iteration        int              `json:"iteration"`
	CombinedScore    float64          `json:"combined_score"`
	ImprovementDelta float64          `json:"improvement_delta"`
	SimilarityScore  float64          `json:"similarity_score"`
	FitScore         float64          `json:"fit_score"`
	MissingKeywords  types.KeywordSet `json:"missing_keywords"`
}

// NewRun summarizes result. The trace holds scores only, not resume contents.
func NewRun(result *types.OptimizationResult, meta types.RunMetadata) (Run, error) {
	if result == nil {
		return Run{}, fmt.Errorf("optimization result is nil")
	}

	trace := make([]TraceEntry, 0, len(result.Iterations))
	for _, rec := range result.Iterations {
		trace = append(trace, TraceEntry{
			Iteration:        rec.Iteration,
			CombinedScore:    rec.CombinedScore,
			ImprovementDelta: rec.ImprovementDelta,
			SimilarityScore:  rec.Similarity.Score,
			FitScore:         rec.Fit.TotalScore,
			MissingKeywords:  rec.Similarity.MissingKeywords,
		})
	}
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		return Run{}, fmt.Errorf("failed to encode trace: %w", err)
	}

	var baseline float64
	if b := result.Baseline(); b != nil {
		baseline = b.CombinedScore
	}

	return Run{
		ID:            result.RecordID,
		JobRef:        meta.JobRef,
		ResumeRef:     meta.ResumeRef,
		ModelInfo:     meta.ModelInfo,
		TerminalState: string(result.TerminalState),
		Iterations:    len(result.Iterations),
		BaselineScore: baseline,
		FinalScore:    result.FinalScore,
		Improvement:   result.Improvement,
		BestIteration: result.BestIteration,
		Duration:      result.Duration,
		Trace:         traceJSON,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// DecodeTrace parses the stored trace
func (r Run) DecodeTrace() ([]TraceEntry, error) {
	if len(r.Trace) == 0 {
		return nil, nil
	}
	var entries []TraceEntry
	if err := json.Unmarshal(r.Trace, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode trace: %w", err)
	}
	return entries, nil
}
