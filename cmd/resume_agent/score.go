package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/ats"
	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/keywords"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/optimizer"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against a job description",
	Long: `Computes semantic similarity, keyword coverage and the ATS rubric for a resume.
Without an API key, embeddings fall back to local hashed vectors.`,
	RunE: runScore,
}

var (
	scoreConfigPath     string
	scoreJobFile        string
	scoreResumeFile     string
	scoreAPIKey         string
	scoreEmbeddingModel string
	scoreRedisURL       string
	scoreTopN           int
	scoreJSON           bool
	scoreVerbose        bool
)

func init() {
	scoreCmd.Flags().StringVar(&scoreConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	scoreCmd.Flags().StringVarP(&scoreJobFile, "job", "j", "", "Path to job description file")
	scoreCmd.Flags().StringVarP(&scoreResumeFile, "resume", "r", "", "Path to resume JSON file")
	scoreCmd.Flags().StringVar(&scoreAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	scoreCmd.Flags().StringVar(&scoreEmbeddingModel, "embedding-model", "", "Embedding model override")
	scoreCmd.Flags().StringVar(&scoreRedisURL, "redis-url", "", "Redis URL for a shared embedding cache (optional, defaults to REDIS_URL env var)")
	scoreCmd.Flags().IntVar(&scoreTopN, "top", 0, "Number of target keywords")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print JSON instead of a summary box")
	scoreCmd.Flags().BoolVarP(&scoreVerbose, "verbose", "v", false, "Print debug logs")

	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if scoreConfigPath != "" {
		loaded, err := config.LoadConfig(scoreConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("job") {
		cfg.Job = scoreJobFile
	}
	if cmd.Flags().Changed("resume") {
		cfg.Resume = scoreResumeFile
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = scoreAPIKey
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.EmbeddingModel = scoreEmbeddingModel
	}
	if cmd.Flags().Changed("redis-url") {
		cfg.RedisURL = scoreRedisURL
	}
	if cmd.Flags().Changed("top") {
		cfg.TopKeywords = scoreTopN
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = scoreVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		RedisURL:    os.Getenv("REDIS_URL"),
		TopKeywords: keywords.DefaultTopN,
	})
	if cfg.Job == "" || cfg.Resume == "" {
		return fmt.Errorf("--job and --resume must be provided (via flag or config)")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(false, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	jobText, _, err := loadJob(cfg.Job)
	if err != nil {
		return err
	}
	resume, err := loadResume(cfg.Resume)
	if err != nil {
		return err
	}

	var client llm.Client
	if apiKey := resolveAPIKey(cfg.APIKey); apiKey != "" {
		client, _, err = newLLMClient(ctx, apiKey, "", cfg.EmbeddingModel)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
	}

	encoder, closeCache := newEncoder(ctx, client, cfg.RedisURL, logger)
	defer closeCache()

	fit, err := ats.NewScorer(ats.WithWeights(cfg.ATSWeights()), ats.WithTopKeywords(cfg.TopKeywords))
	if err != nil {
		return err
	}

	opt := optimizer.New(encoder, optimizer.WithFitScorer(fit), optimizer.WithLogger(logger))
	rec := opt.Score(ctx, resume, jobText, keywords.ExtractKeywords(jobText, cfg.TopKeywords))
	logger.Debug("scored resume",
		zap.Float64("combined_score", rec.CombinedScore),
		zap.Int64("embedding_fallbacks", encoder.Stats().Fallbacks),
	)

	if scoreJSON {
		rec.Resume = nil
		return writeJSON("", rec)
	}
	observability.NewPrinter(os.Stdout).PrintScore(rec)
	return nil
}
