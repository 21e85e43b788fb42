package optimizer

import (
	"fmt"

	"github.com/jonathan/resume-optimizer/internal/ats"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Analysis thresholds on 0-100 dimension scores
const (
	StrengthThreshold = 80.0
	WeaknessThreshold = 70.0
)

// Analysis is a human-readable summary of an optimization result
type Analysis struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Summary      string   `json:"summary"`
}

var dimensionLabels = map[string]string{
	ats.DimKeywordMatch:    "Keyword match",
	ats.DimSectionPresence: "Section completeness",
	ats.DimAchievements:    "Achievement bullets",
	ats.DimQuantification:  "Quantified achievements",
	ats.DimSummaryLength:   "Summary length",
	semanticDimension:      "Semantic similarity",
}

const semanticDimension = "semanticSimilarity"

type dimensionScore struct {
	name  string
	value float64
}

// AnalyzeResults lists strong and weak dimensions of the final resume and
// summarizes the run. It only aggregates existing scores.
func AnalyzeResults(result *types.OptimizationResult) Analysis {
	analysis := Analysis{Strengths: []string{}, Improvements: []string{}}

	final := result.Best()
	baseline := result.Baseline()
	if final == nil || baseline == nil {
		analysis.Summary = "No optimization results to analyze"
		return analysis
	}

	scores := []dimensionScore{{semanticDimension, final.Similarity.Score * 100}}
	for _, dim := range ats.Dimensions {
		if v, ok := final.Fit.Breakdown[dim]; ok {
			scores = append(scores, dimensionScore{dim, v})
		}
	}

	for _, s := range scores {
		entry := fmt.Sprintf("%s: %.0f", dimensionLabels[s.name], s.value)
		switch {
		case s.value >= StrengthThreshold:
			analysis.Strengths = append(analysis.Strengths, entry)
		case s.value < WeaknessThreshold:
			analysis.Improvements = append(analysis.Improvements, entry)
		}
	}

	analysis.Summary = fmt.Sprintf("Score %.2f -> %.2f (%+.2f) after %d revision(s), best at iteration %d, stopped: %s",
		baseline.CombinedScore, result.FinalScore, result.Improvement,
		len(result.Iterations)-1, result.BestIteration, result.TerminalState)
	return analysis
}
