package resilience

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Executor wraps a single fallible operation with bounded retries,
// exponential backoff and jitter. It holds no state across calls and is safe
// for concurrent use.
type Executor struct {
	maxRetries    int
	baseDelay     time.Duration
	backoffFactor float64

	// retryIf decides whether a failure is worth another attempt. Nil
	// retries every failure; callers that can classify permanent failures
	// should supply a predicate.
	retryIf func(error) bool

	sleep func(ctx context.Context, d time.Duration) error

	// random is nil unless a deterministic source is injected; nil uses
	// the lock-free global source. *rand.Rand itself is not safe for
	// concurrent use, so the injected source is serialized.
	randMu sync.Mutex
	random *rand.Rand
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

func WithRetryIf(predicate func(error) bool) ExecutorOption {
	return func(e *Executor) { e.retryIf = predicate }
}

func WithExecutorSleeper(sleep func(ctx context.Context, d time.Duration) error) ExecutorOption {
	return func(e *Executor) { e.sleep = sleep }
}

func WithExecutorRandom(random *rand.Rand) ExecutorOption {
	return func(e *Executor) { e.random = random }
}

func NewExecutor(maxRetries int, baseDelay time.Duration, backoffFactor float64, opts ...ExecutorOption) *Executor {
	e := &Executor{
		maxRetries:    maxRetries,
		baseDelay:     baseDelay,
		backoffFactor: backoffFactor,
		sleep:         sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run invokes op up to maxRetries+1 times. On exhaustion the last failure is
// returned unchanged. The delay before retry k grows as
// baseDelay*backoffFactor^(k-1) plus uniform jitter in [0.1,0.3] of that
// delay, so concurrent items do not retry in lockstep.
func (e *Executor) Run(ctx context.Context, op func(ctx context.Context) error) error {
	var last error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			if err := e.sleep(ctx, e.delayFor(attempt)); err != nil {
				return last
			}
		}

		last = op(ctx)
		if last == nil {
			return nil
		}
		if e.retryIf != nil && !e.retryIf(last) {
			return last
		}
		if ctx.Err() != nil {
			return last
		}
	}
	return last
}

func (e *Executor) delayFor(attempt int) time.Duration {
	delay := float64(e.baseDelay)
	for i := 1; i < attempt; i++ {
		delay *= e.backoffFactor
	}
	jitter := (0.1 + 0.2*e.jitterFactor()) * delay
	return time.Duration(delay + jitter)
}

func (e *Executor) jitterFactor() float64 {
	if e.random == nil {
		return rand.Float64()
	}
	e.randMu.Lock()
	defer e.randMu.Unlock()
	return e.random.Float64()
}
