package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/db"
	"github.com/jonathan/resume-optimizer/internal/embedding"
	"github.com/jonathan/resume-optimizer/internal/ingestion"
	"github.com/jonathan/resume-optimizer/internal/llm"
	"github.com/jonathan/resume-optimizer/internal/metrics"
	"github.com/jonathan/resume-optimizer/internal/schemas"
	"github.com/jonathan/resume-optimizer/internal/types"
)

// embeddingCacheTTL is how long shared Redis embeddings are kept
const embeddingCacheTTL = 7 * 24 * time.Hour

// loadResume reads a resume JSON file and checks it against the schema and
// the struct rules.
func loadResume(path string) (*types.ResumeDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume file: %w", err)
	}

	if err := schemas.ValidateResumeJSON(string(data)); err != nil {
		return nil, fmt.Errorf("resume %s does not match schema: %w", path, err)
	}

	var doc types.ResumeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resume JSON: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid resume %s: %w", path, err)
	}
	return &doc, nil
}

// loadJob reads and cleans a job description file
func loadJob(path string) (string, *ingestion.Metadata, error) {
	text, meta, err := ingestion.IngestFromFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load job description: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil, fmt.Errorf("job description %s is empty", path)
	}
	return text, meta, nil
}

// resolveAPIKey prefers the flag value over GEMINI_API_KEY
func resolveAPIKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("GEMINI_API_KEY")
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty or "-"
func writeJSON(path string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonBytes = append(jsonBytes, '\n')

	if path == "" || path == "-" {
		_, err := os.Stdout.Write(jsonBytes)
		return err
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// newEncoder builds the embedding encoder. A nil client leaves only the local
// fallback vectors; an unreachable Redis is logged and skipped.
func newEncoder(ctx context.Context, client llm.Client, redisURL string, logger *zap.Logger) (*embedding.Encoder, func()) {
	opts := []embedding.Option{embedding.WithLogger(logger)}
	cleanup := func() {}

	if redisURL != "" {
		cache, err := embedding.NewRedisCache(ctx, redisURL, embeddingCacheTTL, logger)
		if err != nil {
			logger.Warn("redis embedding cache disabled", zap.Error(err))
		} else {
			opts = append(opts, embedding.WithSecondaryCache(cache))
			cleanup = func() { _ = cache.Close() }
		}
	}

	var provider embedding.Provider
	if client != nil {
		provider = client
	} else {
		logger.Info("no API key, using local fallback embeddings")
	}
	return embedding.NewEncoder(provider, opts...), cleanup
}

// newLLMClient creates a Gemini client with optional model overrides
func newLLMClient(ctx context.Context, apiKey, model, embeddingModel string) (llm.Client, *llm.Config, error) {
	cfg := llm.DefaultConfig()
	if model != "" {
		cfg = cfg.WithModel(llm.TierAdvanced, model)
	}
	if embeddingModel != "" {
		cfg = cfg.WithEmbeddingModel(embeddingModel)
	}

	client, err := llm.NewClient(ctx, cfg, apiKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, cfg, nil
}

// runStore is a metrics sink that can also list what it recorded
type runStore interface {
	metrics.Recorder
	List(ctx context.Context, limit int) ([]metrics.Run, error)
}

// openRunStore opens PostgreSQL when databaseURL is set, otherwise SQLite at
// sqlitePath. It returns nil when neither is configured.
func openRunStore(ctx context.Context, databaseURL, sqlitePath string) (runStore, io.Closer, error) {
	switch {
	case databaseURL != "":
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := database.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return metrics.NewPostgresRecorder(database), closerFunc(func() error {
			database.Close()
			return nil
		}), nil
	case sqlitePath != "":
		store, err := metrics.OpenSQLite(ctx, sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, nil
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// newRecorder wraps the configured run store in an AsyncRecorder. The
// returned close function flushes pending writes first.
func newRecorder(ctx context.Context, databaseURL, sqlitePath string, logger *zap.Logger) (metrics.Recorder, func() error, error) {
	store, closer, err := openRunStore(ctx, databaseURL, sqlitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open metrics store: %w", err)
	}
	if store == nil {
		return metrics.NopRecorder{}, func() error { return nil }, nil
	}

	async := metrics.NewAsyncRecorder(store, metrics.WithAsyncLogger(logger))
	return async, func() error {
		return errors.Join(async.Close(), closer.Close())
	}, nil
}
