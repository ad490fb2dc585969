package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"storesync/internal/graphql"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestExecutor wires an executor whose sleeps record durations instead of
// actually waiting.
func newTestExecutor(config RetryConfig) (*RetryExecutor, *Tracker, *ConcurrencyController, *[]time.Duration) {
	limiter := NewAdaptiveRateLimiter()
	controller := NewConcurrencyController(10)
	tracker := NewTracker()
	executor := NewRetryExecutor(config, limiter, controller, tracker)

	var sleeps []time.Duration
	executor.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return ctx.Err()
	}
	return executor, tracker, controller, &sleeps
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	executor, _, controller, sleeps := newTestExecutor(RetryConfig{})
	controller.Adjust(true) // width 8, leaves headroom to observe growth

	calls := 0
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
	assert.Equal(t, int64(9), controller.Width(), "success grows the gate")
}

func TestDoRetriesNetworkErrorsUntilSuccess(t *testing.T) {
	executor, tracker, _, sleeps := newTestExecutor(RetryConfig{MaxAttempts: 5, Jitter: false})
	require.NoError(t, tracker.StartStage("test"))

	calls := 0
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	// Exponential backoff: 1s then 2s.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *sleeps)

	metrics, ok := tracker.EndStage()
	require.True(t, ok)
	assert.Equal(t, 2, metrics.RetryAttempts)
	assert.Equal(t, 2, metrics.NetworkErrors)
}

func TestDoExhaustsBudgetAndReturnsLastError(t *testing.T) {
	executor, _, _, _ := newTestExecutor(RetryConfig{MaxAttempts: 3, Jitter: false})

	calls := 0
	failure := errors.New("connection reset by peer")
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return failure
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, failure)
}

func TestDoDoesNotRetryGraphQLErrors(t *testing.T) {
	executor, _, _, sleeps := newTestExecutor(RetryConfig{MaxAttempts: 5})

	calls := 0
	failure := graphql.GraphQLErrors{{Message: "permission denied", Code: "PERMISSION_DENIED"}}
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return failure
	})

	assert.Equal(t, 1, calls, "application errors propagate on first occurrence")
	assert.Empty(t, *sleeps)

	var gqlErrs graphql.GraphQLErrors
	assert.ErrorAs(t, err, &gqlErrs)
}

func TestDoHonorsRetryAfterOncePerOccurrence(t *testing.T) {
	executor, tracker, controller, sleeps := newTestExecutor(RetryConfig{MaxAttempts: 3, Jitter: false})
	require.NoError(t, tracker.StartStage("test"))

	retryAfter := 4 * time.Second
	calls := 0
	err := executor.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return &graphql.RequestError{StatusCode: 429, RetryAfter: &retryAfter}
		}
		return nil
	})
	require.NoError(t, err)

	// First sleep is the explicit Retry-After wait, second is the backoff
	// (stretched by the limiter: base 1s doubled once by the recorded hit,
	// but the still-active hint floors it at the remaining window).
	require.Len(t, *sleeps, 2)
	assert.Equal(t, 4*time.Second, (*sleeps)[0])
	assert.GreaterOrEqual(t, (*sleeps)[1], 2*time.Second)

	assert.Equal(t, int64(9), controller.Width(), "shrunk by 2 on the hit, grown by 1 on success")

	metrics, ok := tracker.EndStage()
	require.True(t, ok)
	assert.Equal(t, 1, metrics.RateLimitHits)
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	executor, _, _, _ := newTestExecutor(RetryConfig{MaxAttempts: 5})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := executor.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("i/o timeout")
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoffCapsAtMaxDelay(t *testing.T) {
	executor, _, _, _ := newTestExecutor(RetryConfig{
		MaxAttempts: 10,
		BaseDelay:   time.Second,
		MaxDelay:    5 * time.Second,
		Jitter:      false,
	})

	assert.Equal(t, time.Second, executor.backoff(1))
	assert.Equal(t, 2*time.Second, executor.backoff(2))
	assert.Equal(t, 4*time.Second, executor.backoff(3))
	assert.Equal(t, 5*time.Second, executor.backoff(4))
	assert.Equal(t, 5*time.Second, executor.backoff(9))
}

func TestBackoffJitterStaysWithinBounds(t *testing.T) {
	executor, _, _, _ := newTestExecutor(RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Jitter:      true,
	})

	for i := 0; i < 100; i++ {
		d := executor.backoff(2) // nominal 2s
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 2*time.Second)
	}
}
