package service

import (
	"context"
	"sync"
	"time"
)

// RateLimiter throttles citizen-facing writes. A false result is the
// expected "window exhausted" outcome; errors mean the backing store
// itself failed.
type RateLimiter interface {
	Allow(ctx context.Context, actorID string) (bool, error)
}

// MemoryRateLimiter is the in-process fallback used when Redis is not
// configured. It mirrors the Redis limiter's fixed-window conditional
// increment so both backends satisfy the same boundary behavior.
// Single-instance only; counters vanish on restart.
type MemoryRateLimiter struct {
	window time.Duration
	limit  int
	now    func() time.Time

	mu       sync.Mutex
	counters map[string]int
	windows  map[string]int64
}

func NewMemoryRateLimiter(window time.Duration, limit int) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		window:   window,
		limit:    limit,
		now:      time.Now,
		counters: make(map[string]int),
		windows:  make(map[string]int64),
	}
}

func (m *MemoryRateLimiter) Allow(_ context.Context, actorID string) (bool, error) {
	windowIndex := m.now().UnixMilli() / m.window.Milliseconds()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Expired window: reset instead of keeping stale counters around.
	if m.windows[actorID] != windowIndex {
		m.windows[actorID] = windowIndex
		m.counters[actorID] = 0
	}
	if m.counters[actorID] >= m.limit {
		return false, nil
	}
	m.counters[actorID]++
	return true, nil
}
