package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiter bounds the outbound call rate per named dependency over a
// sliding time window. Acquire never rejects, it only delays.
type RateLimiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	admitted    map[string][]time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// RateLimiterOption overrides a limiter's clock or sleeper, used by tests.
type RateLimiterOption func(*RateLimiter)

func WithLimiterClock(now func() time.Time) RateLimiterOption {
	return func(l *RateLimiter) { l.now = now }
}

func WithLimiterSleeper(sleep func(ctx context.Context, d time.Duration) error) RateLimiterOption {
	return func(l *RateLimiter) { l.sleep = sleep }
}

func NewRateLimiter(maxRequests int, window time.Duration, opts ...RateLimiterOption) *RateLimiter {
	l := &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		admitted:    make(map[string][]time.Time),
		now:         time.Now,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Acquire blocks the caller until admitting one more request for dependency
// keeps the trailing window under the configured maximum, or until ctx is
// done. The mutex is never held across a sleep, so one caller's wait cannot
// stall another dependency or corrupt shared state on cancellation.
func (l *RateLimiter) Acquire(ctx context.Context, dependency string) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		now := l.now()
		window := l.pruned(dependency, now)
		if len(window) < l.maxRequests {
			l.admitted[dependency] = append(window, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.window - now.Sub(window[0])
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// pruned drops timestamps older than the window. Caller holds the mutex.
func (l *RateLimiter) pruned(dependency string, now time.Time) []time.Time {
	window := l.admitted[dependency]
	cut := 0
	for cut < len(window) && now.Sub(window[cut]) >= l.window {
		cut++
	}
	window = window[cut:]
	l.admitted[dependency] = window
	return window
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
