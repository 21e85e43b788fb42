// Package ats scores a resume against a job description with a deterministic,
// weighted rubric and produces actionable recommendations.
package ats

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Rubric bounds
const (
	MinAchievements     = 3
	MaxAchievements     = 6
	MinSummarySentences = 2
	MaxSummarySentences = 3
	MaxSummaryWords     = 80

	quantifiedTarget         = 0.5
	actionVerbTarget         = 0.5
	maxKeywordsInAdvice      = 10
	excessAchievementPenalty = 15.0
)

var (
	quantifiedPattern = regexp.MustCompile(`\d|%|\$`)
	sentenceEnd       = regexp.MustCompile(`[.!?]+(\s+|$)`)
)

// strongVerbs are common resume action verbs
var strongVerbs = map[string]bool{
	"achieved": true, "architected": true, "automated": true, "built": true,
	"created": true, "cut": true, "delivered": true, "designed": true,
	"developed": true, "drove": true, "engineered": true, "implemented": true,
	"improved": true, "increased": true, "launched": true, "led": true,
	"managed": true, "migrated": true, "optimized": true, "reduced": true,
	"scaled": true, "shipped": true, "transformed": true, "wrote": true,
}

// Scorer applies the rubric with fixed weights
type Scorer struct {
	weights Weights
	topN    int
}

// Option configures a Scorer
type Option func(*Scorer)

// WithWeights overrides DefaultWeights
func WithWeights(w Weights) Option {
	return func(s *Scorer) { s.weights = w }
}

// WithTopKeywords sets how many job keywords Score extracts
func WithTopKeywords(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.topN = n
		}
	}
}

// NewScorer creates a Scorer, rejecting invalid weights
func NewScorer(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		weights: DefaultWeights(),
		topN:    keywords.DefaultTopN,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Weights returns the weights in use
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score extracts the job's top keywords and scores the resume against them
func (s *Scorer) Score(resume *types.ResumeDocument, jobDescription string) types.FitScore {
	return s.ScoreWithKeywords(resume, keywords.ExtractKeywords(jobDescription, s.topN))
}

// ScoreWithKeywords scores the resume against an already extracted keyword set
func (s *Scorer) ScoreWithKeywords(resume *types.ResumeDocument, targets types.KeywordSet) types.FitScore {
	if resume == nil {
		resume = &types.ResumeDocument{}
	}

	var recs []string
	match := keywords.MatchKeywords(resume.PlainText(), targets)

	keywordScore := match.Coverage() * 100
	recs = append(recs, keywordAdvice(match.Missing)...)

	sectionScore, sectionRecs := scoreSections(resume)
	recs = append(recs, sectionRecs...)

	achievementScore, achievementRecs := scoreAchievements(resume.Experience)
	recs = append(recs, achievementRecs...)

	quantScore, quantRecs := scoreQuantification(resume.Experience)
	recs = append(recs, quantRecs...)

	summaryScore, summaryRecs := scoreSummary(resume.Summary)
	recs = append(recs, summaryRecs...)

	recs = append(recs, actionVerbAdvice(resume.Experience)...)

	breakdown := map[string]float64{
		DimKeywordMatch:    round2(keywordScore),
		DimSectionPresence: round2(sectionScore),
		DimAchievements:    round2(achievementScore),
		DimQuantification:  round2(quantScore),
		DimSummaryLength:   round2(summaryScore),
	}

	w := s.weights
	weighted := w.KeywordMatch*keywordScore +
		w.SectionPresence*sectionScore +
		w.Achievements*achievementScore +
		w.Quantification*quantScore +
		w.SummaryLength*summaryScore
	total := clamp(round2(weighted/w.sum()), 0, 100)

	if recs == nil {
		recs = []string{}
	}

	return types.FitScore{
		TotalScore:      total,
		KeywordCoverage: breakdown[DimKeywordMatch],
		Breakdown:       breakdown,
		Recommendations: recs,
		MissingKeywords: match.Missing,
	}
}

func keywordAdvice(missing types.KeywordSet) []string {
	if len(missing) == 0 {
		return nil
	}
	shown := missing
	if len(shown) > maxKeywordsInAdvice {
		shown = shown[:maxKeywordsInAdvice]
	}
	return []string{fmt.Sprintf("Add missing keywords where your experience supports them: %s", strings.Join(shown, ", "))}
}

func scoreSections(r *types.ResumeDocument) (float64, []string) {
	sections := []struct {
		name    string
		present bool
	}{
		{"contact", strings.TrimSpace(r.Contact.Name) != "" || strings.TrimSpace(r.Contact.Email) != ""},
		{"summary", strings.TrimSpace(r.Summary) != ""},
		{"experience", len(r.Experience) > 0},
		{"skills", !r.Skills.IsEmpty()},
		{"education", len(r.Education) > 0},
	}

	var recs []string
	present := 0
	for _, section := range sections {
		if section.present {
			present++
			continue
		}
		recs = append(recs, fmt.Sprintf("CRITICAL: missing %s section", section.name))
	}
	return float64(present) / float64(len(sections)) * 100, recs
}

// scoreAchievements averages a per-entry score: full marks for 3-6 bullets,
// proportional below, and a penalty per bullet above.
func scoreAchievements(experience []types.Experience) (float64, []string) {
	if len(experience) == 0 {
		return 0, nil
	}

	var recs []string
	total := 0.0
	for _, exp := range experience {
		n := len(exp.Achievements)
		label := strings.TrimSpace(exp.Title + " at " + exp.Company)
		switch {
		case n < MinAchievements:
			total += float64(n) / MinAchievements * 100
			recs = append(recs, fmt.Sprintf("Add achievements to %s (has %d, aim for %d-%d)", label, n, MinAchievements, MaxAchievements))
		case n > MaxAchievements:
			total += math.Max(0, 100-float64(n-MaxAchievements)*excessAchievementPenalty)
			recs = append(recs, fmt.Sprintf("Trim achievements for %s to at most %d", label, MaxAchievements))
		default:
			total += 100
		}
	}
	return total / float64(len(experience)), recs
}

func scoreQuantification(experience []types.Experience) (float64, []string) {
	total, quantified := 0, 0
	for _, exp := range experience {
		for _, achievement := range exp.Achievements {
			total++
			if quantifiedPattern.MatchString(achievement) {
				quantified++
			}
		}
	}
	if total == 0 {
		return 0, nil
	}

	ratio := float64(quantified) / float64(total)
	if ratio < quantifiedTarget {
		return ratio * 100, []string{fmt.Sprintf("Quantify more achievements with numbers, percentages or dollar amounts (%d of %d quantified)", quantified, total)}
	}
	return ratio * 100, nil
}

func scoreSummary(summary string) (float64, []string) {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return 0, nil
	}

	sentences := countSentences(summary)
	words := len(strings.Fields(summary))

	score := 100.0
	var recs []string
	switch {
	case sentences < MinSummarySentences:
		score = 70
		recs = append(recs, fmt.Sprintf("Expand summary to %d-%d sentences", MinSummarySentences, MaxSummarySentences))
	case sentences > MaxSummarySentences:
		score = math.Max(0, 100-float64(sentences-MaxSummarySentences)*20)
		recs = append(recs, fmt.Sprintf("Consider shortening summary to under %d sentences", MaxSummarySentences+1))
	}
	if words > MaxSummaryWords {
		score = math.Max(0, score-20)
		recs = append(recs, fmt.Sprintf("Keep summary under %d words (has %d)", MaxSummaryWords, words))
	}
	return score, recs
}

func countSentences(text string) int {
	count := 0
	for _, part := range sentenceEnd.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	return count
}

// actionVerbAdvice is advisory only and does not affect the score
func actionVerbAdvice(experience []types.Experience) []string {
	total, strong := 0, 0
	for _, exp := range experience {
		for _, achievement := range exp.Achievements {
			total++
			if startsWithStrongVerb(achievement) {
				strong++
			}
		}
	}
	if total == 0 || float64(strong)/float64(total) >= actionVerbTarget {
		return nil
	}
	return []string{"Start achievements with strong action verbs such as built, led, reduced or shipped"}
}

func startsWithStrongVerb(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return false
	}
	first := strings.TrimRight(words[0], ".,!?;:")
	if strongVerbs[first] {
		return true
	}
	// past-tense verbs are usually action verbs
	return strings.HasSuffix(first, "ed") && len(first) > 3
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
