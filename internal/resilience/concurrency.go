package resilience

import (
	"context"
	"sync"

	"storesync/pkg/logging"

	"golang.org/x/sync/semaphore"
)

const (
	// DefaultConcurrency is the initial and maximum width of the gate.
	DefaultConcurrency = 10

	// minConcurrency is the floor the gate never shrinks below.
	minConcurrency = 1
)

// ConcurrencyController bounds the number of in-flight remote operations.
// The bound shrinks aggressively when the server rate-limits (-2 per hit)
// and grows back slowly on sustained success (+1 per success), clamped to
// [1, ceiling].
//
// The gate is rebuilt whenever the width changes; operations already
// admitted keep their slot on the gate they acquired from and are unaffected
// by the resize.
type ConcurrencyController struct {
	// mu guards width and gate. A plain read-modify-write of the width
	// would race between concurrently completing operations.
	mu      sync.Mutex
	width   int64
	ceiling int64
	gate    *semaphore.Weighted
}

// NewConcurrencyController creates a controller with the given initial
// width, which also serves as the ceiling. Zero or negative means
// DefaultConcurrency.
func NewConcurrencyController(width int64) *ConcurrencyController {
	if width <= 0 {
		width = DefaultConcurrency
	}
	return &ConcurrencyController{
		width:   width,
		ceiling: width,
		gate:    semaphore.NewWeighted(width),
	}
}

// Acquire admits one operation, blocking until a slot is free or ctx is
// done. The returned release function must be called exactly once; it
// releases the slot on the gate it was acquired from, so a concurrent
// resize never corrupts accounting.
func (c *ConcurrencyController) Acquire(ctx context.Context) (func(), error) {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()

	if err := gate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { gate.Release(1) }, nil
}

// Adjust updates the width after an operation outcome: shrink by 2 on a
// rate limit, grow by 1 on success. The gate is swapped only when the
// clamped width actually changes.
func (c *ConcurrencyController) Adjust(wasRateLimited bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	newWidth := c.width
	if wasRateLimited {
		newWidth -= 2
		if newWidth < minConcurrency {
			newWidth = minConcurrency
		}
	} else {
		newWidth++
		if newWidth > c.ceiling {
			newWidth = c.ceiling
		}
	}

	if newWidth == c.width {
		return
	}

	logging.Debug("Concurrency", "Adjusting concurrency %d -> %d (rate limited: %t)", c.width, newWidth, wasRateLimited)
	c.width = newWidth
	c.gate = semaphore.NewWeighted(newWidth)
}

// Width returns the current admission width.
func (c *ConcurrencyController) Width() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}
