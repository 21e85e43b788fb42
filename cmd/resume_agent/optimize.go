package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/ats"
	"github.com/jonathan/resume-optimizer/internal/config"
	"github.com/jonathan/resume-optimizer/internal/ingestion"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/observability"
	"github.com/jonathan/resume-optimizer/internal/optimizer"
	"github.com/jonathan/resume-optimizer/internal/rewriting"
	"github.com/jonathan/resume-optimizer/internal/types"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Iteratively revise a resume to fit a job description",
	Long: `Scores the resume, asks the LLM to revise it using the scoring feedback, and
re-scores until the target is reached, improvement stalls, a revision fails,
or the iteration limit is hit. The best-scoring resume is written out.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runOptimize,
}

var (
	optConfigPath           string
	optJobFile              string
	optResumeFile           string
	optOutputFile           string
	optReportFile           string
	optAPIKey               string
	optModel                string
	optEmbeddingModel       string
	optRedisURL             string
	optDatabaseURL          string
	optSQLitePath           string
	optMaxIterations        int
	optTargetScore          float64
	optImprovementThreshold float64
	optTopKeywords          int
	optForbidden            []string
	optVerbose              bool
)

func init() {
	// Config file flag (processed first)
	optimizeCmd.Flags().StringVar(&optConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	optimizeCmd.Flags().StringVarP(&optJobFile, "job", "j", "", "Path to job description file (text or HTML)")
	optimizeCmd.Flags().StringVarP(&optResumeFile, "resume", "r", "", "Path to base resume JSON file")
	optimizeCmd.Flags().StringVarP(&optOutputFile, "out", "o", "", "Path for the optimized resume JSON (default stdout)")
	optimizeCmd.Flags().StringVar(&optReportFile, "report", "", "Path for the full iteration report JSON (optional)")
	optimizeCmd.Flags().IntVar(&optMaxIterations, "max-iterations", 0, "Maximum revisions after the baseline")
	optimizeCmd.Flags().Float64Var(&optTargetScore, "target", 0, "Combined score (0-100) that ends the run")
	optimizeCmd.Flags().Float64Var(&optImprovementThreshold, "min-improvement", 0, "Minimum score gain per revision before the run plateaus")
	optimizeCmd.Flags().IntVar(&optTopKeywords, "top", 0, "Number of target keywords")
	optimizeCmd.Flags().StringSliceVar(&optForbidden, "forbid", nil, "Phrases the revised resume must not contain (repeatable)")
	optimizeCmd.Flags().BoolVarP(&optVerbose, "verbose", "v", false, "Print the iteration trace and analysis")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	optimizeCmd.Flags().StringVar(&optAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	optimizeCmd.Flags().StringVar(&optModel, "model", "", "Revision model override")
	optimizeCmd.Flags().StringVar(&optEmbeddingModel, "embedding-model", "", "Embedding model override")
	optimizeCmd.Flags().StringVar(&optRedisURL, "redis-url", "", "Redis URL for a shared embedding cache (optional, defaults to REDIS_URL env var)")

	// Metrics sinks
	optimizeCmd.Flags().StringVar(&optDatabaseURL, "db-url", "", "PostgreSQL connection URL for run metrics (optional, defaults to DATABASE_URL env var)")
	optimizeCmd.Flags().StringVar(&optSQLitePath, "sqlite", "", "SQLite path for run metrics (optional, defaults to RESUME_AGENT_SQLITE env var)")

	rootCmd.AddCommand(optimizeCmd)
}

// optimizeReport is the --report output
type optimizeReport struct {
	Job      *ingestion.Metadata       `json:"job"`
	Result   *types.OptimizationResult `json:"result"`
	Analysis optimizer.Analysis        `json:"analysis"`
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := resolveOptimizeConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(false, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	jobText, jobMeta, err := loadJob(cfg.Job)
	if err != nil {
		return err
	}
	base, err := loadResume(cfg.Resume)
	if err != nil {
		return err
	}

	apiKey := resolveAPIKey(cfg.APIKey)
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}
	client, llmCfg, err := newLLMClient(ctx, apiKey, cfg.Model, cfg.EmbeddingModel)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	encoder, closeCache := newEncoder(ctx, client, cfg.RedisURL, logger)
	defer closeCache()

	fit, err := ats.NewScorer(ats.WithWeights(cfg.ATSWeights()), ats.WithTopKeywords(cfg.TopKeywords))
	if err != nil {
		return err
	}

	recorder, closeRecorder, err := newRecorder(ctx, cfg.DatabaseURL, cfg.SQLitePath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRecorder(); err != nil {
			logger.Warn("failed to close metrics recorder", zap.Error(err))
		}
	}()

	reviser := rewriting.NewReviser(client, jobText,
		rewriting.WithForbiddenPhrases(optForbidden),
		rewriting.WithLogger(logger),
	)

	opt := optimizer.New(encoder,
		optimizer.WithFitScorer(fit),
		optimizer.WithRecorder(recorder),
		optimizer.WithLogger(logger),
	)

	meta := types.RunMetadata{
		JobRef:    jobMeta.Ref(),
		ResumeRef: cfg.Resume,
		ModelInfo: llmCfg.Describe(llm.TierAdvanced),
	}
	result, err := opt.Optimize(ctx, base, jobText, reviser.Revise, cfg.ToOptimizerConfig(meta))
	if err != nil {
		return err
	}
	analysis := optimizer.AnalyzeResults(result)

	if err := writeJSON(cfg.Output, result.FinalResume); err != nil {
		return err
	}
	if optReportFile != "" {
		if err := writeJSON(optReportFile, optimizeReport{Job: jobMeta, Result: result, Analysis: analysis}); err != nil {
			return err
		}
	}

	// Keep stdout clean when the resume itself goes there
	var out io.Writer = os.Stdout
	if cfg.Output == "" || cfg.Output == "-" {
		out = os.Stderr
	}
	if cfg.Verbose {
		printer := observability.NewPrinter(out)
		printer.PrintIterationTrace(result)
		printer.PrintAnalysis(analysis)
	}
	_, _ = fmt.Fprintf(out, "%s\n", analysis.Summary)
	if stats := encoder.Stats(); stats.Fallbacks > 0 {
		_, _ = fmt.Fprintf(out, "Warning: %d embedding(s) used the local fallback\n", stats.Fallbacks)
	}
	if result.TerminalState == types.StateRevisionFailed {
		_, _ = fmt.Fprintf(out, "Warning: stopped after a failed revision; the best resume so far was kept\n")
	}

	return nil
}

// resolveOptimizeConfig merges the config file, flags, environment and defaults
func resolveOptimizeConfig(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if optConfigPath != "" {
		loaded, err := config.LoadConfig(optConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Step 2: Apply CLI overrides (only flags that were explicitly set)
	flags := cmd.Flags()
	if flags.Changed("job") {
		cfg.Job = optJobFile
	}
	if flags.Changed("resume") {
		cfg.Resume = optResumeFile
	}
	if flags.Changed("out") {
		cfg.Output = optOutputFile
	}
	if flags.Changed("api-key") {
		cfg.APIKey = optAPIKey
	}
	if flags.Changed("model") {
		cfg.Model = optModel
	}
	if flags.Changed("embedding-model") {
		cfg.EmbeddingModel = optEmbeddingModel
	}
	if flags.Changed("redis-url") {
		cfg.RedisURL = optRedisURL
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = optDatabaseURL
	}
	if flags.Changed("sqlite") {
		cfg.SQLitePath = optSQLitePath
	}
	if flags.Changed("max-iterations") {
		cfg.MaxIterations = optMaxIterations
	}
	if flags.Changed("target") {
		cfg.TargetScore = optTargetScore
	}
	if flags.Changed("min-improvement") {
		cfg.ImprovementThreshold = optImprovementThreshold
	}
	if flags.Changed("top") {
		cfg.TopKeywords = optTopKeywords
	}
	if flags.Changed("verbose") {
		cfg.Verbose = optVerbose
	}

	// Step 3: Apply environment and defaults for unset values
	defaults := config.Defaults()
	defaults.RedisURL = os.Getenv("REDIS_URL")
	defaults.DatabaseURL = os.Getenv("DATABASE_URL")
	defaults.SQLitePath = os.Getenv("RESUME_AGENT_SQLITE")
	cfg = cfg.MergeWithDefaults(defaults)

	// Step 4: Validate required fields
	var missing []string
	if cfg.Job == "" {
		missing = append(missing, "--job")
	}
	if cfg.Resume == "" {
		missing = append(missing, "--resume")
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("%s must be provided (via flag or config)", strings.Join(missing, " and "))
	}

	return cfg, cfg.Validate()
}
