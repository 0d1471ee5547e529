// Package ratelimit implements the fixed-window failed-login policy.
// Counters live in a pluggable store; the Redis store keeps lockouts
// effective across restarts and replicas, the memory store is for tests
// and single-node dev setups.
package ratelimit

import (
	"context"
	"time"
)

type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Store is the counter backend. Incr bumps a key's counter, starting the
// window on first increment; Count reads it without bumping.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
	Count(ctx context.Context, key string) (count int64, ttl time.Duration, err error)
	Reset(ctx context.Context, key string) error
}

type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

func New(store Store, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 5
	}

	if window <= 0 {
		window = 15 * time.Minute
	}

	return &Limiter{store: store, limit: limit, window: window}
}

func (l *Limiter) Limit() int {
	return l.limit
}

// Allow reports whether key may attempt another login. Store errors fail
// open: a broken counter backend must not lock everyone out.
func (l *Limiter) Allow(ctx context.Context, key string) Result {
	count, ttl, err := l.store.Count(ctx, key)

	if err != nil {
		return Result{Allowed: true, Remaining: l.limit - 1}
	}

	if count >= int64(l.limit) {
		if ttl < 0 {
			ttl = 0
		}

		return Result{Allowed: false, RetryAfter: ttl}
	}

	return Result{Allowed: true, Remaining: l.limit - int(count) - 1}
}

// RecordFailure counts one failed attempt against key.
func (l *Limiter) RecordFailure(ctx context.Context, key string) {
	_, _, _ = l.store.Incr(ctx, key, l.window)
}

// Reset clears the counter after a successful login.
func (l *Limiter) Reset(ctx context.Context, key string) {
	_ = l.store.Reset(ctx, key)
}
