package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type window struct {
	count   int
	expires time.Time
}

// MemoryStore keeps counters in a bounded LRU. Windows expire lazily on
// read; the LRU additionally drops entries once ttl has passed since they
// were created and evicts the least recently used key beyond maxKeys.
type MemoryStore struct {
	mu      sync.Mutex
	windows *expirable.LRU[string, *window]
	now     func() time.Time
}

// NewMemoryStore sizes the store for maxKeys clients. ttl should be at least
// the longest window the store serves.
func NewMemoryStore(maxKeys int, ttl time.Duration) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = 10000
	}
	return &MemoryStore{
		windows: expirable.NewLRU[string, *window](maxKeys, nil, ttl),
		now:     time.Now,
	}
}

func (s *MemoryStore) Hit(_ context.Context, key string, limit int, win time.Duration) (Decision, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows.Get(key)
	if !ok || !now.Before(w.expires) {
		w = &window{count: 1, expires: now.Add(win)}
		s.windows.Add(key, w)
		return Decision{Allowed: true, Count: 1, Limit: limit, ResetAt: w.expires}, nil
	}
	if w.count < limit {
		w.count++
		return Decision{Allowed: true, Count: w.count, Limit: limit, ResetAt: w.expires}, nil
	}
	return Decision{
		Allowed:    false,
		Count:      w.count,
		Limit:      limit,
		ResetAt:    w.expires,
		RetryAfter: w.expires.Sub(now),
	}, nil
}

// Len reports how many client windows are held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windows.Len()
}
