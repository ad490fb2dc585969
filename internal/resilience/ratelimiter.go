package resilience

import (
	"sync"
	"time"

	"storesync/pkg/logging"
)

const (
	// rateLimitWindow is how long a rate-limit occurrence stays "recent".
	// The counter resets lazily once this much time has passed since the
	// last occurrence.
	rateLimitWindow = 60 * time.Second

	// maxAdaptiveDelay caps the exponential delay growth.
	maxAdaptiveDelay = 15 * time.Second
)

// AdaptiveRateLimiter tracks recent rate-limit occurrences and any
// server-provided Retry-After hint, and computes the delay an operation
// should honor before its next attempt.
//
// The limiter is shared by every concurrently dispatched operation of a run,
// so all state is guarded by a mutex. The recent-occurrence counter resets
// lazily: there is no timer, the elapsed window is checked whenever the
// counter is next read or incremented.
type AdaptiveRateLimiter struct {
	mu sync.Mutex

	recentCount       int
	lastRateLimit     time.Time
	retryAfterExpires time.Time

	now func() time.Time
}

// NewAdaptiveRateLimiter creates a limiter with no recorded occurrences.
func NewAdaptiveRateLimiter() *AdaptiveRateLimiter {
	return &AdaptiveRateLimiter{now: time.Now}
}

// TrackRateLimit records one rate-limit occurrence. retryAfter, when
// non-nil, is the server's Retry-After hint; the limiter will report it via
// ShouldWait and AdaptiveDelay until it expires.
func (l *AdaptiveRateLimiter) TrackRateLimit(retryAfter *time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.expireWindowLocked(now)

	l.recentCount++
	l.lastRateLimit = now
	if retryAfter != nil {
		l.retryAfterExpires = now.Add(*retryAfter)
	}

	logging.Debug("RateLimiter", "Rate limit hit recorded (recent count %d)", l.recentCount)
}

// AdaptiveDelay converts a base delay into the delay the caller should
// actually honor. An active Retry-After hint always wins, but is never
// rounded down below base. With no hint, the base delay doubles per recent
// occurrence, capped at 15 seconds.
func (l *AdaptiveRateLimiter) AdaptiveDelay(base time.Duration) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.expireWindowLocked(now)

	if l.retryAfterExpires.After(now) {
		remaining := l.retryAfterExpires.Sub(now)
		if remaining < base {
			return base
		}
		return remaining
	}

	if l.recentCount == 0 {
		return base
	}

	delay := base
	for i := 0; i < l.recentCount; i++ {
		delay *= 2
		if delay >= maxAdaptiveDelay {
			return maxAdaptiveDelay
		}
	}
	return delay
}

// ShouldWait reports whether an active Retry-After hint is still in effect,
// and if so, for how much longer.
func (l *AdaptiveRateLimiter) ShouldWait() (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.retryAfterExpires.After(now) {
		return true, l.retryAfterExpires.Sub(now)
	}
	return false, 0
}

// RecentCount returns the number of rate-limit occurrences inside the
// current window.
func (l *AdaptiveRateLimiter) RecentCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expireWindowLocked(l.now())
	return l.recentCount
}

// Reset clears all recorded state. Used between test cases and when a
// command invocation wants a fresh slate.
func (l *AdaptiveRateLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.recentCount = 0
	l.lastRateLimit = time.Time{}
	l.retryAfterExpires = time.Time{}
}

// expireWindowLocked zeroes the counter when the window has fully elapsed
// since the last occurrence. Callers must hold l.mu.
func (l *AdaptiveRateLimiter) expireWindowLocked(now time.Time) {
	if l.recentCount > 0 && now.Sub(l.lastRateLimit) >= rateLimitWindow {
		l.recentCount = 0
	}
}
