package resilience

import (
	"context"
	"math/rand"
	"time"

	"storesync/pkg/logging"
)

// RetryConfig defines the retry budget and backoff curve for one executor.
type RetryConfig struct {
	// MaxAttempts is the total attempt budget, first try included.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff growth.
	MaxDelay time.Duration

	// Jitter randomizes each backoff within [delay/2, delay) to avoid
	// synchronized retries across concurrent operations.
	Jitter bool
}

// DefaultRetryConfig returns the standard retry policy for remote calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      true,
	}
}

// RetryExecutor wraps a single remote operation with bounded retries and
// exponential backoff, feeding every failure through the classifier and the
// adaptive rate limiter.
//
// The executor does not admit operations itself; composition order is
// Controller(Retry(op)): the concurrency gate admits an attempt, then all
// retries of that logical operation happen inside the admitted slot, so a
// retrying operation never consumes extra concurrency.
type RetryExecutor struct {
	config     RetryConfig
	limiter    *AdaptiveRateLimiter
	controller *ConcurrencyController
	tracker    *Tracker

	// sleep is swapped out by tests to avoid real waits.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryExecutor builds an executor. limiter, controller and tracker may
// not be nil; config fields at their zero value fall back to defaults.
func NewRetryExecutor(config RetryConfig, limiter *AdaptiveRateLimiter, controller *ConcurrencyController, tracker *Tracker) *RetryExecutor {
	defaults := DefaultRetryConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = defaults.BaseDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = defaults.MaxDelay
	}
	return &RetryExecutor{
		config:     config,
		limiter:    limiter,
		controller: controller,
		tracker:    tracker,
		sleep:      sleepContext,
	}
}

// Do runs op, retrying retryable failures up to the attempt budget.
// Non-retryable failures propagate on first occurrence; retryable failures
// are surfaced only after the budget is exhausted, unwrapped so callers can
// still match the original error shape.
func (r *RetryExecutor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			r.controller.Adjust(false)
			return nil
		}
		lastErr = err

		kind := Classify(err)
		r.tracker.RecordErrorKind(kind)

		if kind == KindRateLimit {
			r.tracker.RecordRateLimitHit()
			hint := RetryAfterHint(err)
			r.limiter.TrackRateLimit(hint)
			r.controller.Adjust(true)
			// The explicit server hint is honored once per detected
			// occurrence, in addition to the retry backoff below.
			if hint != nil {
				if sleepErr := r.sleep(ctx, *hint); sleepErr != nil {
					return sleepErr
				}
			}
		}

		if !kind.Retryable() {
			logging.Debug("Retry", "Not retrying %s error: %v", kind, err)
			return err
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		r.tracker.RecordRetryAttempt()
		delay := r.limiter.AdaptiveDelay(r.backoff(attempt))
		logging.Debug("Retry", "Attempt %d/%d failed (%s), backing off %s: %v",
			attempt, r.config.MaxAttempts, kind, delay, err)
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}

	logging.Warn("Retry", "Retry budget of %d attempts exhausted: %v", r.config.MaxAttempts, lastErr)
	return lastErr
}

// backoff computes the exponential delay before attempt+1.
func (r *RetryExecutor) backoff(attempt int) time.Duration {
	delay := r.config.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= r.config.MaxDelay {
			delay = r.config.MaxDelay
			break
		}
	}
	if r.config.Jitter && delay > time.Millisecond {
		half := delay / 2
		delay = half + time.Duration(rand.Int63n(int64(half)))
	}
	return delay
}

// sleepContext waits for d unless ctx is done first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
