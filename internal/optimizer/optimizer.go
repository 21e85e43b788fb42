// Package optimizer runs the bounded revise-and-rescore loop that tailors a
// resume to a job description.
package optimizer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/resume-optimizer/internal/ats"
	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/similarity"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// ReviseFunc produces a candidate resume from the current one and scoring feedback.
// It receives a private copy of current and may be slow or non-deterministic.
type ReviseFunc func(ctx context.Context, current *types.ResumeDocument, feedback string) (*types.ResumeDocument, error)

// Optimizer scores resumes and drives the revision loop
type Optimizer struct {
	similarity *similarity.Scorer
	fit        *ats.Scorer
	recorder   metrics.Recorder
	logger     *zap.Logger
}

// Option configures an Optimizer
type Option func(*Optimizer)

// WithFitScorer replaces the default ATS scorer
func WithFitScorer(s *ats.Scorer) Option {
	return func(o *Optimizer) {
		if s != nil {
			o.fit = s
		}
	}
}

// WithRecorder records every completed run
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Optimizer) { o.recorder = r }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *Optimizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an Optimizer that embeds text with embedder
func New(embedder similarity.Embedder, opts ...Option) *Optimizer {
	fit, _ := ats.NewScorer() // default weights are valid
	o := &Optimizer{
		similarity: similarity.NewScorer(embedder),
		fit:        fit,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Score evaluates one resume against the job and target keywords.
// The returned record has no iteration number, delta or feedback set.
func (o *Optimizer) Score(ctx context.Context, resume *types.ResumeDocument, jobDescription string, targets types.KeywordSet) types.IterationRecord {
	sim := o.similarity.Score(ctx, resume.PlainText(), jobDescription, targets)
	fit := o.fit.ScoreWithKeywords(resume, targets)

	return types.IterationRecord{
		Resume:        resume,
		Similarity:    sim,
		Fit:           fit,
		CombinedScore: CombinedScore(sim, fit),
		CreatedAt:     time.Now().UTC(),
	}
}

// CombinedScore averages the similarity score (scaled to 0-100) with the ATS total
func CombinedScore(sim types.SimilarityResult, fit types.FitScore) float64 {
	return similarity.Round2((sim.Score*100 + fit.TotalScore) / 2)
}

// Optimize scores base, then repeatedly revises and rescores it until the
// target is met, improvement stalls, a revision fails, the context ends, or
// MaxIterations revisions have run. Only invalid arguments produce an error;
// every other outcome is a complete result tagged with its TerminalState.
func (o *Optimizer) Optimize(ctx context.Context, base *types.ResumeDocument, jobDescription string, revise ReviseFunc, cfg Config) (*types.OptimizationResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if base == nil {
		return nil, &ConfigError{Field: "resume", Message: "must not be nil"}
	}
	if revise == nil {
		return nil, &ConfigError{Field: "revise", Message: "must not be nil"}
	}

	start := time.Now()
	targets := keywords.ExtractKeywords(jobDescription, cfg.TopKeywords)
	log := o.logger.With(zap.Int("target_keywords", len(targets)))

	baseline := o.Score(ctx, base.Clone(), jobDescription, targets)
	history := []types.IterationRecord{baseline}
	o.logIteration(log, cfg, baseline)

	best := 0
	current := baseline
	state := types.StateExhausted

	for i := 1; i <= cfg.MaxIterations; i++ {
		if current.CombinedScore >= cfg.TargetScore {
			state = types.StateConverged
			break
		}
		if ctx.Err() != nil {
			state = types.StateCancelled
			break
		}

		feedback := BuildFeedback(current, cfg.TargetScore)
		candidate, err := revise(ctx, current.Resume.Clone(), feedback)
		if err == nil {
			err = validateCandidate(candidate)
		}
		if err != nil {
			state = types.StateRevisionFailed
			if ctx.Err() != nil {
				state = types.StateCancelled
			}
			log.Warn("revision failed",
				zap.Int("iteration", i),
				zap.String("state", string(state)),
				zap.Error(err),
			)
			break
		}

		rec := o.Score(ctx, candidate.Clone(), jobDescription, targets)
		rec.Iteration = i
		rec.Feedback = feedback
		rec.ImprovementDelta = similarity.Round2(rec.CombinedScore - current.CombinedScore)
		history = append(history, rec)
		o.logIteration(log, cfg, rec)

		if rec.CombinedScore > history[best].CombinedScore {
			best = len(history) - 1
		}
		if rec.CombinedScore >= cfg.TargetScore {
			state = types.StateConverged
			break
		}
		if i >= 2 && rec.ImprovementDelta < cfg.ImprovementThreshold {
			state = types.StatePlateaued
			break
		}
		current = rec
	}

	result := &types.OptimizationResult{
		Iterations:    history,
		FinalResume:   history[best].Resume.Clone(),
		FinalScore:    history[best].CombinedScore,
		Improvement:   similarity.Round2(history[best].CombinedScore - baseline.CombinedScore),
		BestIteration: best,
		TerminalState: state,
		Duration:      time.Since(start),
	}

	log.Info("optimization finished",
		zap.String("state", string(state)),
		zap.Int("iterations", len(history)),
		zap.Int("best_iteration", best),
		zap.Float64("final_score", result.FinalScore),
		zap.Float64("improvement", result.Improvement),
	)

	o.record(ctx, result, cfg.Metadata)
	return result, nil
}

func validateCandidate(candidate *types.ResumeDocument) error {
	if candidate == nil {
		return errors.New("revision returned no resume")
	}
	return candidate.Validate()
}

func (o *Optimizer) logIteration(log *zap.Logger, cfg Config, rec types.IterationRecord) {
	level := zapcore.DebugLevel
	if cfg.Verbose {
		level = zapcore.InfoLevel
	}
	log.Log(level, "scored iteration",
		zap.Int("iteration", rec.Iteration),
		zap.Float64("combined_score", rec.CombinedScore),
		zap.Float64("similarity", rec.Similarity.Score),
		zap.Float64("fit", rec.Fit.TotalScore),
		zap.Float64("delta", rec.ImprovementDelta),
		zap.Int("missing_keywords", len(rec.Similarity.MissingKeywords)),
	)
}

// record hands the result to the recorder without letting it affect the result
func (o *Optimizer) record(ctx context.Context, result *types.OptimizationResult, meta types.RunMetadata) {
	if o.recorder == nil {
		return
	}

	run, err := metrics.NewRun(result, meta)
	if err != nil {
		o.logger.Warn("failed to build metrics run", zap.Error(err))
		return
	}

	id, err := o.recorder.Record(context.WithoutCancel(ctx), run)
	if err != nil {
		o.logger.Warn("failed to record optimization run", zap.Error(err))
		return
	}
	result.RecordID = id
}
