package bulk

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket capping the outbound send rate of bulk
// campaigns so one announcement cannot exhaust provider quotas.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter allows capacity sends per period, refilled continuously.
func NewRateLimiter(capacity int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     float64(capacity),
		maxTokens:  float64(capacity),
		refillRate: float64(capacity) / period.Seconds(),
		lastRefill: time.Now(),
	}
}

// Allow consumes one token if available.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.Allow() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// refill adds tokens based on elapsed time. Must be called with lock held.
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
	r.lastRefill = now
}
