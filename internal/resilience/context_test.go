package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteComposesGateAndRetry(t *testing.T) {
	rc := NewContext(Options{
		Concurrency: 2,
		Retry:       RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Jitter: false},
	})

	calls := 0
	err := rc.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls, "retries happen inside the admitted slot")
}

func TestExecuteBoundsConcurrency(t *testing.T) {
	rc := NewContext(Options{
		Concurrency: 2,
		Retry:       RetryConfig{MaxAttempts: 1},
	})

	var inFlight, maxInFlight int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = rc.Execute(context.Background(), func(ctx context.Context) error {
				current := atomic.AddInt64(&inFlight, 1)
				for {
					observed := atomic.LoadInt64(&maxInFlight)
					if current <= observed || atomic.CompareAndSwapInt64(&maxInFlight, observed, current) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt64(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt64(&maxInFlight), int64(2))
}

func TestExecuteResult(t *testing.T) {
	rc := NewContext(Options{Retry: RetryConfig{MaxAttempts: 1}})

	value, err := ExecuteResult(context.Background(), rc, func(ctx context.Context) (string, error) {
		return "created", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "created", value)

	boom := errors.New("nope")
	_, err = ExecuteResult(context.Background(), rc, func(ctx context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestChunkOptionsCarriesLimiter(t *testing.T) {
	rc := NewContext(Options{ChunkSize: 4, ChunkDelay: 100 * time.Millisecond})

	opts := rc.ChunkOptions()
	assert.Equal(t, 4, opts.ChunkSize)
	assert.Equal(t, 100*time.Millisecond, opts.Delay)
	assert.Same(t, rc.Limiter, opts.Limiter)
}
