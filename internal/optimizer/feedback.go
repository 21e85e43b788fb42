package optimizer

import (
	"fmt"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/types"
)

const maxFeedbackKeywords = 10

// BuildFeedback turns a scored iteration into revision instructions: the
// current scores, missing keywords and the ATS recommendations.
func BuildFeedback(rec types.IterationRecord, targetScore float64) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Current combined score: %.2f (target %.2f)\n", rec.CombinedScore, targetScore)
	fmt.Fprintf(&sb, "Semantic similarity: %.2f, ATS score: %.2f, keyword coverage: %.0f%%\n",
		rec.Similarity.Score, rec.Fit.TotalScore, rec.Fit.KeywordCoverage)

	if missing := missingKeywords(rec); len(missing) > 0 {
		fmt.Fprintf(&sb, "\nMissing keywords: %s\n", strings.Join(missing, ", "))
	}

	if len(rec.Fit.Recommendations) > 0 {
		sb.WriteString("\nRecommendations:\n")
		for _, r := range rec.Fit.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}

	sb.WriteString("\nOnly add keywords and claims that the existing experience supports.")
	return sb.String()
}

// missingKeywords merges similarity and ATS misses, first occurrence wins
func missingKeywords(rec types.IterationRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, set := range []types.KeywordSet{rec.Similarity.MissingKeywords, rec.Fit.MissingKeywords} {
		for _, kw := range set {
			if seen[kw] || len(out) == maxFeedbackKeywords {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}
