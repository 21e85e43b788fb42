package ats

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-optimizer/internal/types"
)

func completeResume() *types.ResumeDocument {
	return &types.ResumeDocument{
		Contact: types.ContactInfo{Name: "Jane Doe", Email: "jane@example.com"},
		Summary: "Backend engineer with 8 years building Go services. Focused on reliability and PostgreSQL performance.",
		Experience: []types.Experience{
			{
				Title:   "Senior Engineer",
				Company: "Acme",
				Achievements: []string{
					"Built a Go ingestion pipeline handling 2M events per day",
					"Reduced PostgreSQL query latency by 45%",
					"Led migration saving $120k per year",
				},
			},
		},
		Skills:    types.Skills{Flat: "Go, PostgreSQL, Docker"},
		Education: []types.Education{{Degree: "BSc Computer Science", Institution: "State University"}},
	}
}

func newScorer(t *testing.T, opts ...Option) *Scorer {
	t.Helper()
	s, err := NewScorer(opts...)
	require.NoError(t, err)
	return s
}

func TestScoreWithKeywords_CompleteResume(t *testing.T) {
	fit := newScorer(t).ScoreWithKeywords(completeResume(), types.KeywordSet{"go", "postgresql"})

	assert.InDelta(t, 100.0, fit.TotalScore, 0.01)
	assert.Equal(t, 100.0, fit.KeywordCoverage)
	for _, dim := range Dimensions {
		assert.Equal(t, 100.0, fit.Breakdown[dim], dim)
	}
	assert.Empty(t, fit.Recommendations)
	assert.NotNil(t, fit.Recommendations)
	assert.Empty(t, fit.MissingKeywords)
}

func TestScoreWithKeywords_MissingKeywords(t *testing.T) {
	fit := newScorer(t).ScoreWithKeywords(completeResume(), types.KeywordSet{"go", "kubernetes", "grpc", "postgresql"})

	assert.Equal(t, 50.0, fit.KeywordCoverage)
	assert.InDelta(t, 80.0, fit.TotalScore, 0.01)
	assert.Equal(t, types.KeywordSet{"kubernetes", "grpc"}, fit.MissingKeywords)
	assert.Contains(t, fit.Recommendations, "Add missing keywords where your experience supports them: kubernetes, grpc")
}

func TestScoreWithKeywords_EmptyKeywordsDegrades(t *testing.T) {
	fit := newScorer(t).ScoreWithKeywords(completeResume(), nil)

	assert.Equal(t, 0.0, fit.KeywordCoverage)
	assert.InDelta(t, 60.0, fit.TotalScore, 0.01)
}

func TestScoreWithKeywords_MissingSections(t *testing.T) {
	resume := completeResume()
	resume.Education = nil
	resume.Skills = types.Skills{}

	fit := newScorer(t).ScoreWithKeywords(resume, types.KeywordSet{"go"})

	assert.Equal(t, 60.0, fit.Breakdown[DimSectionPresence])
	assert.Contains(t, fit.Recommendations, "CRITICAL: missing skills section")
	assert.Contains(t, fit.Recommendations, "CRITICAL: missing education section")
}

func TestScoreWithKeywords_NilResume(t *testing.T) {
	fit := newScorer(t).ScoreWithKeywords(nil, types.KeywordSet{"go"})

	assert.Equal(t, 0.0, fit.TotalScore)
	assert.Contains(t, fit.Recommendations, "CRITICAL: missing contact section")
	assert.Contains(t, fit.Recommendations, "CRITICAL: missing experience section")
}

func TestScoreAchievements(t *testing.T) {
	bullets := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "Built 1 thing"
		}
		return out
	}

	tests := []struct {
		name     string
		counts   []int
		expected float64
		recs     int
	}{
		{"ideal", []int{3, 6}, 100, 0},
		{"too few", []int{1}, 33.33, 1},
		{"none", []int{0}, 0, 1},
		{"too many", []int{8}, 70, 1},
		{"mixed", []int{3, 0}, 50, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var experience []types.Experience
			for _, n := range tt.counts {
				experience = append(experience, types.Experience{Title: "Engineer", Company: "Acme", Achievements: bullets(n)})
			}
			score, recs := scoreAchievements(experience)
			assert.InDelta(t, tt.expected, score, 0.01)
			assert.Len(t, recs, tt.recs)
		})
	}
}

func TestScoreQuantification(t *testing.T) {
	experience := []types.Experience{{Achievements: []string{"Cut costs by 10%", "Mentored engineers", "Improved onboarding"}}}

	score, recs := scoreQuantification(experience)
	assert.InDelta(t, 33.33, score, 0.01)
	assert.Equal(t, []string{"Quantify more achievements with numbers, percentages or dollar amounts (1 of 3 quantified)"}, recs)

	score, recs = scoreQuantification(nil)
	assert.Equal(t, 0.0, score)
	assert.Empty(t, recs)
}

func TestScoreSummary(t *testing.T) {
	long := strings.Repeat("word ", 90) + "end. Short."

	tests := []struct {
		name     string
		summary  string
		expected float64
		rec      string
	}{
		{"ideal", "First sentence. Second sentence.", 100, ""},
		{"single sentence", "Only one sentence here", 70, "Expand summary to 2-3 sentences"},
		{"too many sentences", "One. Two. Three. Four.", 80, "Consider shortening summary to under 4 sentences"},
		{"too long", long, 80, "Keep summary under 80 words (has 92)"},
		{"empty", "  ", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, recs := scoreSummary(tt.summary)
			assert.Equal(t, tt.expected, score)
			if tt.rec == "" {
				assert.Empty(t, recs)
			} else {
				assert.Contains(t, recs, tt.rec)
			}
		})
	}
}

func TestActionVerbAdvice(t *testing.T) {
	weak := []types.Experience{{Achievements: []string{"Responsible for deployments", "Helping with APIs", "Shipped billing"}}}
	assert.Len(t, actionVerbAdvice(weak), 1)

	strong := []types.Experience{{Achievements: []string{"Automated deployments", "Designed APIs"}}}
	assert.Empty(t, actionVerbAdvice(strong))
}

func TestScore_ExtractsKeywordsFromJob(t *testing.T) {
	fit := newScorer(t, WithTopKeywords(10)).Score(completeResume(), "Senior Go engineer, must know Kubernetes, gRPC, PostgreSQL")

	assert.True(t, fit.MissingKeywords.Contains("kubernetes"))
	assert.True(t, fit.MissingKeywords.Contains("grpc"))
	assert.False(t, fit.MissingKeywords.Contains("go"))
	assert.GreaterOrEqual(t, fit.TotalScore, 0.0)
	assert.LessOrEqual(t, fit.TotalScore, 100.0)
}

func TestScore_Deterministic(t *testing.T) {
	s := newScorer(t)
	jd := "Go engineer with Kubernetes and distributed systems experience"
	assert.Equal(t, s.Score(completeResume(), jd), s.Score(completeResume(), jd))
}

func TestWithWeights(t *testing.T) {
	s := newScorer(t, WithWeights(Weights{KeywordMatch: 1}))
	fit := s.ScoreWithKeywords(completeResume(), types.KeywordSet{"go", "kubernetes"})

	assert.Equal(t, 50.0, fit.TotalScore)
	assert.Equal(t, Weights{KeywordMatch: 1}, s.Weights())
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	var weightsErr *WeightsError
	err := Weights{KeywordMatch: 1, Achievements: -0.1}.Validate()
	require.True(t, errors.As(err, &weightsErr))
	assert.Contains(t, err.Error(), "achievements")

	err = Weights{}.Validate()
	require.True(t, errors.As(err, &weightsErr))
	assert.True(t, Weights{}.IsZero())

	_, err = NewScorer(WithWeights(Weights{}))
	assert.Error(t, err)
}
