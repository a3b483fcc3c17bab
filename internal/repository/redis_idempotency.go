package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type idempotencyRecord struct {
	Status     int    `json:"status"`
	Body       []byte `json:"body"`
	Processing bool   `json:"processing"`
}

// RedisIdempotencyStore shares submit replay state across instances.
// The processing placeholder written by GetOrLock doubles as the
// concurrency lock; SETNX makes acquisition atomic.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *RedisClient, ttl time.Duration) *RedisIdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotencyStore{client: client.Client, ttl: ttl}
}

func (s *RedisIdempotencyStore) GetOrLock(key string) (int, []byte, bool, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	placeholder, _ := json.Marshal(idempotencyRecord{Processing: true})
	acquired, err := s.client.SetNX(ctx, s.key(key), placeholder, s.ttl).Result()
	if err != nil || acquired {
		// Redis failure degrades to pass-through rather than blocking
		// citizen intake.
		return 0, nil, false, false
	}

	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		return 0, nil, false, false
	}
	var rec idempotencyRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return 0, nil, false, false
	}
	return rec.Status, rec.Body, rec.Processing, true
}

func (s *RedisIdempotencyStore) Save(key string, status int, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	raw, _ := json.Marshal(idempotencyRecord{Status: status, Body: body})
	_ = s.client.Set(ctx, s.key(key), raw, s.ttl).Err()
}

func (s *RedisIdempotencyStore) Unlock(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = s.client.Del(ctx, s.key(key)).Err()
}

func (s *RedisIdempotencyStore) key(key string) string {
	return "idem:" + key
}
