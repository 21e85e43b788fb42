// Package embedding turns text into fixed-length vectors using an external
// embedding provider, with a deterministic local fallback and a per-encoder cache.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// DefaultProviderTimeout bounds a single provider call
const DefaultProviderTimeout = 10 * time.Second

// Provider is an external embedding service
type Provider interface {
	EmbedContent(ctx context.Context, text string) ([]float32, error)
}

// Stats are cumulative counters for one Encoder
type Stats struct {
	Hits          int64
	Misses        int64
	ProviderCalls int64
	Fallbacks     int64
	CachedVectors int
}

// Encoder embeds text with caching. It never returns an error: provider
// failures degrade to FallbackVector.
type Encoder struct {
	provider Provider
	l1       *MemoryCache
	l2       Cache
	dims     int
	timeout  time.Duration
	logger   *zap.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	providerCalls atomic.Int64
	fallbacks     atomic.Int64
}

// Option configures an Encoder
type Option func(*Encoder)

// WithCapacity bounds the in-memory cache with LRU eviction (0 = unbounded)
func WithCapacity(capacity int) Option {
	return func(e *Encoder) { e.l1 = NewMemoryCache(capacity) }
}

// WithSecondaryCache adds a shared cache tier consulted after the in-memory one
func WithSecondaryCache(c Cache) Option {
	return func(e *Encoder) { e.l2 = c }
}

// WithLogger sets the logger used for provider failures
func WithLogger(logger *zap.Logger) Option {
	return func(e *Encoder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProviderTimeout bounds each provider call
func WithProviderTimeout(d time.Duration) Option {
	return func(e *Encoder) { e.timeout = d }
}

// NewEncoder creates an encoder. A nil provider always uses the fallback.
func NewEncoder(provider Provider, opts ...Option) *Encoder {
	e := &Encoder{
		provider: provider,
		l1:       NewMemoryCache(0),
		dims:     Dimensions,
		timeout:  DefaultProviderTimeout,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NormalizeKey is the cache key for text
func NormalizeKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Embed returns the vector for text, always of length Dimensions
func (e *Encoder) Embed(ctx context.Context, text string) types.EmbeddingVector {
	key := NormalizeKey(text)
	if key == "" {
		return make(types.EmbeddingVector, e.dims)
	}

	if vector, ok := e.l1.Get(ctx, key); ok {
		e.hits.Add(1)
		return vector
	}
	if e.l2 != nil {
		if vector, ok := e.l2.Get(ctx, key); ok && len(vector) == e.dims {
			e.hits.Add(1)
			e.l1.Set(ctx, key, vector)
			return vector
		}
	}
	e.misses.Add(1)

	vector, err := e.fromProvider(ctx, strings.TrimSpace(text))
	if err != nil {
		e.fallbacks.Add(1)
		e.logger.Debug("embedding provider unavailable, using local fallback", zap.Error(err))
		vector = FallbackVector(key, e.dims)
	}

	e.l1.Set(ctx, key, vector)
	if e.l2 != nil {
		e.l2.Set(ctx, key, vector)
	}
	return copyVector(vector)
}

func (e *Encoder) fromProvider(ctx context.Context, text string) (types.EmbeddingVector, error) {
	if e.provider == nil {
		return nil, errors.New("no embedding provider configured")
	}

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.providerCalls.Add(1)
	values, err := e.provider.EmbedContent(callCtx, text)
	if err != nil {
		return nil, err
	}
	return fitVector(values, e.dims)
}

// fitVector converts a provider payload to dims entries, truncating or zero-padding.
func fitVector(values []float32, dims int) (types.EmbeddingVector, error) {
	if len(values) == 0 {
		return nil, errors.New("provider returned an empty embedding")
	}

	vector := make(types.EmbeddingVector, dims)
	for i := 0; i < dims && i < len(values); i++ {
		v := float64(values[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("provider returned a non-finite value at index %d", i)
		}
		vector[i] = v
	}
	return vector, nil
}

// ClearCache drops every cached vector, including the secondary tier
func (e *Encoder) ClearCache(ctx context.Context) error {
	_ = e.l1.Clear(ctx)
	if e.l2 != nil {
		if err := e.l2.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear secondary cache: %w", err)
		}
	}
	return nil
}

// Stats returns a snapshot of the encoder counters
func (e *Encoder) Stats() Stats {
	return Stats{
		Hits:          e.hits.Load(),
		Misses:        e.misses.Load(),
		ProviderCalls: e.providerCalls.Load(),
		Fallbacks:     e.fallbacks.Load(),
		CachedVectors: e.l1.Len(),
	}
}
