// Package retry wraps channel adapter calls with bounded exponential
// backoff. Only transient failures are retried; permanent and validation
// failures return after a single attempt.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/campushq/notification-engine/internal/domain"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxDelay    = 30 * time.Second
)

// AttemptFunc performs one underlying send attempt.
type AttemptFunc func(ctx context.Context) domain.ChannelResult

// Policy holds the retry parameters. The zero value is not usable; build
// one with DefaultPolicy or explicit fields.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Do runs attempt up to p.MaxAttempts times. The backoff before attempt n
// is BaseDelay * 2^(n-1) plus jitter, capped at MaxDelay, and blocks only
// the calling goroutine; sibling channels of the same dispatch run on
// their own goroutines and are unaffected. After exhaustion the last
// transient failure is surfaced as the final result, never escalated.
func (p Policy) Do(ctx context.Context, attempt AttemptFunc) domain.ChannelResult {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var last domain.ChannelResult
	for n := 1; n <= maxAttempts; n++ {
		last = attempt(ctx)
		if last.Success {
			return last
		}
		if last.Err == nil || !last.Err.Retryable() {
			return last
		}
		if n == maxAttempts {
			break
		}
		if err := sleep(ctx, p.delay(n)); err != nil {
			return last
		}
	}
	return last
}

// delay computes the backoff after the n-th failed attempt.
func (p Policy) delay(n int) time.Duration {
	d := p.BaseDelay << uint(n-1)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	// Full jitter on the upper half keeps retries from synchronizing
	// across concurrent dispatches.
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
