// Package ratelimit enforces a sliding request quota per caller on
// top of the store's atomic INCR/EXPIRE primitives.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

const keyPrefix = "ratelimit:"

// store is the consumer interface for rate-limit operations (ISP).
type store interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Result reports the outcome of a quota check.
type Result struct {
	Allowed   bool
	Remaining int64
	ResetAt   time.Time
}

// Limiter is a fixed-window request counter per caller identifier.
type Limiter struct {
	store store
	now   func() time.Time
}

// New creates a rate limiter.
func New(s store) *Limiter {
	return &Limiter{store: s, now: time.Now}
}

// Check atomically increments the caller's counter and reports
// whether the caller is within quota. The window expiry is
// initialized only on the first increment of a window (EXPIRE NX),
// and the counter is bumped on every attempt, including rejected ones.
func (l *Limiter) Check(
	ctx context.Context, identifier string, maxRequests int64, window time.Duration,
) (Result, error) {
	key := keyPrefix + identifier

	count, err := l.store.Incr(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit incr %s: %w", identifier, err)
	}

	if err := l.store.Expire(ctx, key, window, true); err != nil {
		return Result{}, fmt.Errorf("rate limit expire %s: %w", identifier, err)
	}

	ttl, err := l.store.TTL(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("rate limit ttl %s: %w", identifier, err)
	}
	if ttl <= 0 {
		ttl = window
	}

	remaining := maxRequests - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{
		Allowed:   count <= maxRequests,
		Remaining: remaining,
		ResetAt:   l.now().Add(ttl),
	}, nil
}
