package ats

import "fmt"

// Breakdown dimension names
const (
	DimKeywordMatch    = "keywordMatch"
	DimSectionPresence = "sectionPresence"
	DimAchievements    = "achievements"
	DimQuantification  = "quantification"
	DimSummaryLength   = "summaryLength"
)

// Dimensions lists every scored dimension in report order
var Dimensions = []string{
	DimKeywordMatch,
	DimSectionPresence,
	DimAchievements,
	DimQuantification,
	DimSummaryLength,
}

// Weights sets the relative importance of each dimension in TotalScore.
// They are normalized by their sum, so they need not add up to 1.
type Weights struct {
	KeywordMatch    float64 `json:"keyword_match"`
	SectionPresence float64 `json:"section_presence"`
	Achievements    float64 `json:"achievements"`
	Quantification  float64 `json:"quantification"`
	SummaryLength   float64 `json:"summary_length"`
}

// DefaultWeights favours keyword coverage, then structural completeness
func DefaultWeights() Weights {
	return Weights{
		KeywordMatch:    0.40,
		SectionPresence: 0.25,
		Achievements:    0.15,
		Quantification:  0.10,
		SummaryLength:   0.10,
	}
}

// Validate rejects negative weights and an all-zero set
func (w Weights) Validate() error {
	for name, v := range w.byDimension() {
		if v < 0 {
			return &WeightsError{Message: fmt.Sprintf("weight %s must be non-negative, got %g", name, v)}
		}
	}
	if w.sum() == 0 {
		return &WeightsError{Message: "at least one weight must be positive"}
	}
	return nil
}

// IsZero reports whether no weight was set, which callers treat as "use defaults"
func (w Weights) IsZero() bool {
	return w == Weights{}
}

func (w Weights) byDimension() map[string]float64 {
	return map[string]float64{
		DimKeywordMatch:    w.KeywordMatch,
		DimSectionPresence: w.SectionPresence,
		DimAchievements:    w.Achievements,
		DimQuantification:  w.Quantification,
		DimSummaryLength:   w.SummaryLength,
	}
}

func (w Weights) sum() float64 {
	return w.KeywordMatch + w.SectionPresence + w.Achievements + w.Quantification + w.SummaryLength
}

// WeightsError reports an invalid weight configuration
type WeightsError struct {
	Message string
}

func (e *WeightsError) Error() string {
	return fmt.Sprintf("invalid ATS weights: %s", e.Message)
}
