package service

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRateLimiterBoundary(t *testing.T) {
	window := 300 * time.Second
	limit := 10
	now := time.Unix(1_700_000_000, 0)

	limiter := NewMemoryRateLimiter(window, limit)
	limiter.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < limit; i++ {
		allowed, err := limiter.Allow(ctx, "citizen-1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("request %d within limit should be allowed", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "citizen-1")
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if allowed {
		t.Fatal("request over the limit should be blocked")
	}

	// Other actors keep their own counters.
	if allowed, _ := limiter.Allow(ctx, "citizen-2"); !allowed {
		t.Fatal("separate actor should not share a window counter")
	}

	// Next window resets the exhausted counter.
	now = now.Add(window)
	if allowed, _ := limiter.Allow(ctx, "citizen-1"); !allowed {
		t.Fatal("new window should allow again")
	}
}

func TestMemoryRateLimiterWindowIndexStable(t *testing.T) {
	window := 300 * time.Second
	base := time.Unix(1_700_000_000, 0).Truncate(window)

	limiter := NewMemoryRateLimiter(window, 1)
	now := base
	limiter.now = func() time.Time { return now }

	ctx := context.Background()
	if allowed, _ := limiter.Allow(ctx, "c"); !allowed {
		t.Fatal("first request should pass")
	}

	// Still inside the same fixed window just before the boundary.
	now = base.Add(window - time.Millisecond)
	if allowed, _ := limiter.Allow(ctx, "c"); allowed {
		t.Fatal("same window should stay exhausted")
	}

	now = base.Add(window)
	if allowed, _ := limiter.Allow(ctx, "c"); !allowed {
		t.Fatal("boundary crossing should open a fresh window")
	}
}
