package resilience

import (
	"context"
	"time"
)

// Options configures a resilience Context.
type Options struct {
	// Concurrency is the initial (and maximum) number of in-flight remote
	// operations. Zero means DefaultConcurrency.
	Concurrency int64

	// Retry is the retry policy; zero fields fall back to defaults.
	Retry RetryConfig

	// ChunkSize and ChunkDelay configure chunked batch processing.
	ChunkSize  int
	ChunkDelay time.Duration
}

// Context bundles the shared resilience state for one command invocation:
// the adaptive rate limiter, the concurrency gate, the retry policy and the
// stage tracker. It is constructed once per invocation and passed
// explicitly, so parallel runs and tests stay isolated.
type Context struct {
	Limiter    *AdaptiveRateLimiter
	Controller *ConcurrencyController
	Tracker    *Tracker

	retryer    *RetryExecutor
	chunkSize  int
	chunkDelay time.Duration
}

// NewContext builds a fresh resilience Context from options.
func NewContext(opts Options) *Context {
	limiter := NewAdaptiveRateLimiter()
	controller := NewConcurrencyController(opts.Concurrency)
	tracker := NewTracker()

	return &Context{
		Limiter:    limiter,
		Controller: controller,
		Tracker:    tracker,
		retryer:    NewRetryExecutor(opts.Retry, limiter, controller, tracker),
		chunkSize:  opts.ChunkSize,
		chunkDelay: opts.ChunkDelay,
	}
}

// Execute runs op under the full composed policy: the concurrency gate
// admits the operation, then bounded retries with adaptive backoff happen
// inside the admitted slot.
func (rc *Context) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	release, err := rc.Controller.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return rc.retryer.Do(ctx, op)
}

// ExecuteResult is Execute for operations that return a value.
func ExecuteResult[T any](ctx context.Context, rc *Context, op func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := rc.Execute(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}

// ChunkOptions returns the chunked-processing options derived from this
// context, with the adaptive limiter attached to the inter-chunk delay.
func (rc *Context) ChunkOptions() ChunkOptions {
	return ChunkOptions{
		ChunkSize: rc.chunkSize,
		Delay:     rc.chunkDelay,
		Limiter:   rc.Limiter,
	}
}
