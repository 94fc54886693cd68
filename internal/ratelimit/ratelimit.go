// Package ratelimit implements fixed-window request counters keyed by client
// identity. Stores are injectable: MemoryStore counts within one process,
// PostgresStore shares counters between instances. A multi-instance
// deployment needs the shared store; independent in-process counters
// under-count traffic spread across instances.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Decision is the outcome of one counted request.
type Decision struct {
	Allowed    bool
	Count      int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Store atomically reads, checks and increments the counter for key. A
// request that is rejected does not advance the counter.
type Store interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// Sweeper is implemented by stores that need explicit expiry of old windows.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Limiter applies one limit/window pair to a Store under its own key namespace.
type Limiter struct {
	name   string
	store  Store
	limit  int
	window time.Duration
}

func NewLimiter(name string, store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{name: name, store: store, limit: limit, window: window}
}

// Allow counts one request from client.
func (l *Limiter) Allow(ctx context.Context, client string) (Decision, error) {
	d, err := l.store.Hit(ctx, l.name+":"+client, l.limit, l.window)
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", l.name, err)
	}
	return d, nil
}

func (l *Limiter) Limit() int            { return l.limit }
func (l *Limiter) Window() time.Duration { return l.window }
