package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Retry defaults for background writes
const (
	DefaultMaxTries        = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxElapsedTime  = 30 * time.Second
)

// AsyncRecorder writes runs to another Recorder in the background.
// Record returns the run ID immediately and never reports write failures.
type AsyncRecorder struct {
	next            Recorder
	logger          *zap.Logger
	maxTries        uint
	initialInterval time.Duration
	maxElapsed      time.Duration

	mu       sync.Mutex
	closed   bool
	wg       sync.WaitGroup
	written  atomic.Int64
	failures atomic.Int64
}

// AsyncOption configures an AsyncRecorder
type AsyncOption func(*AsyncRecorder)

// WithAsyncLogger sets the logger used for failed writes
func WithAsyncLogger(logger *zap.Logger) AsyncOption {
	return func(a *AsyncRecorder) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRetry sets the retry policy for each write
func WithRetry(maxTries uint, initialInterval, maxElapsed time.Duration) AsyncOption {
	return func(a *AsyncRecorder) {
		if maxTries > 0 {
			a.maxTries = maxTries
		}
		if initialInterval > 0 {
			a.initialInterval = initialInterval
		}
		if maxElapsed > 0 {
			a.maxElapsed = maxElapsed
		}
	}
}

// NewAsyncRecorder wraps next
func NewAsyncRecorder(next Recorder, opts ...AsyncOption) *AsyncRecorder {
	a := &AsyncRecorder{
		next:            next,
		logger:          zap.NewNop(),
		maxTries:        DefaultMaxTries,
		initialInterval: DefaultInitialInterval,
		maxElapsed:      DefaultMaxElapsedTime,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record assigns the run ID and schedules the write. The write outlives ctx cancellation.
func (a *AsyncRecorder) Record(ctx context.Context, run Run) (string, error) {
	run.ID = ensureID(run.ID)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return "", ErrClosed
	}
	a.wg.Add(1)
	a.mu.Unlock()

	writeCtx := context.WithoutCancel(ctx)
	go func() {
		defer a.wg.Done()
		a.write(writeCtx, run)
	}()

	return run.ID, nil
}

func (a *AsyncRecorder) write(ctx context.Context, run Run) {
	operation := func() (string, error) {
		return a.next.Record(ctx, run)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.initialInterval
	bo.MaxInterval = 10 * a.initialInterval

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(a.maxTries),
		backoff.WithMaxElapsedTime(a.maxElapsed),
	)
	if err != nil {
		a.failures.Add(1)
		a.logger.Warn("failed to record optimization run",
			zap.String("run_id", run.ID),
			zap.String("terminal_state", run.TerminalState),
			zap.Error(err),
		)
		return
	}

	a.written.Add(1)
	a.logger.Debug("recorded optimization run", zap.String("run_id", run.ID))
}

// Written returns how many runs were stored successfully
func (a *AsyncRecorder) Written() int64 {
	return a.written.Load()
}

// Failures returns how many runs were dropped after exhausting retries
func (a *AsyncRecorder) Failures() int64 {
	return a.failures.Load()
}

// Close stops accepting runs and waits for in-flight writes
func (a *AsyncRecorder) Close() error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	a.wg.Wait()
	return nil
}
