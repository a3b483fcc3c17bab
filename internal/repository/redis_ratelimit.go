package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateLimitScript performs the bounded increment as one atomic step:
// increment only when the counter is absent or still below the limit,
// and start the window TTL on first increment. Returns 1 when the call
// is admitted, 0 when the window is exhausted.
var rateLimitScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current and tonumber(current) >= tonumber(ARGV[1]) then
    return 0
end
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

// RedisRateLimiter implements fixed-window throttling per actor. A
// burst straddling a window boundary can admit close to twice the
// limit; accepted trade-off of the fixed-window scheme.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
	limit  int
}

func NewRedisRateLimiter(client *RedisClient, prefix string, window time.Duration, limit int) *RedisRateLimiter {
	if prefix == "" {
		prefix = "rate_limit"
	}
	return &RedisRateLimiter{
		client: client.Client,
		prefix: prefix,
		window: window,
		limit:  limit,
	}
}

// Allow reports whether the actor may proceed within the current
// window. A denied call is an expected outcome, not an error; errors
// are reserved for transport failures.
func (r *RedisRateLimiter) Allow(ctx context.Context, actorID string) (bool, error) {
	windowIndex := time.Now().UnixMilli() / r.window.Milliseconds()
	key := fmt.Sprintf("%s:%s:%d", r.prefix, actorID, windowIndex)

	res, err := rateLimitScript.Run(ctx, r.client, []string{key},
		r.limit, int(r.window.Seconds())).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
