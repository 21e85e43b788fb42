// Package similarity blends embedding cosine similarity with keyword coverage
// into a single resume-to-job fit score.
package similarity

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// Blend weights for the final score
const (
	CosineWeight  = 0.6
	KeywordWeight = 0.4
)

// Embedder produces vectors for text. *embedding.Encoder satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) types.EmbeddingVector
}

// Scorer computes SimilarityResults using one Embedder
type Scorer struct {
	embedder Embedder
}

// NewScorer creates a Scorer
func NewScorer(embedder Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// Score embeds both texts concurrently and combines cosine similarity with
// keyword coverage: round2(0.6*cosine + 0.4*coverage), clamped to [0,1].
// A cancelled context still yields a result because embedding never fails.
func (s *Scorer) Score(ctx context.Context, resumeText, jobDescription string, targets types.KeywordSet) types.SimilarityResult {
	var resumeVec, jobVec types.EmbeddingVector

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resumeVec = s.embedder.Embed(gctx, resumeText)
		return nil
	})
	g.Go(func() error {
		jobVec = s.embedder.Embed(gctx, jobDescription)
		return nil
	})
	_ = g.Wait()

	cosine := CosineSimilarity(resumeVec, jobVec)
	match := keywords.MatchKeywords(resumeText, targets)
	keywordScore := match.Coverage()

	score := clamp(Round2(CosineWeight*cosine+KeywordWeight*keywordScore), 0, 1)

	return types.SimilarityResult{
		Score:           score,
		Cosine:          cosine,
		KeywordScore:    keywordScore,
		MatchedKeywords: match.Matched,
		MissingKeywords: match.Missing,
		KeywordDensity:  match.Density,
	}
}

// CosineSimilarity returns dot(a,b)/(|a||b|) clamped to [-1,1].
// It is 0 when either vector has zero norm or the lengths differ.
func CosineSimilarity(a, b types.EmbeddingVector) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(cos) {
		return 0
	}
	return clamp(cos, -1, 1)
}

// Round2 rounds to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
