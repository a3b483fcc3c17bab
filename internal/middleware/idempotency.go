package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

// IdempotencyStore caches final responses per citizen+key so double
// submits (flaky mobile networks, double taps) replay the first result
// instead of creating duplicate reports.
type IdempotencyStore interface {
	// GetOrLock returns the cached status/body when the key completed,
	// processing=true when another request holds it, and hit=false when
	// the caller just acquired the lock.
	GetOrLock(key string) (status int, body []byte, processing, hit bool)
	Save(key string, status int, body []byte)
	Unlock(key string)
}

type inMemRecord struct {
	status     int
	body       []byte
	createdAt  time.Time
	processing bool
}

// InMemIdempotencyStore is the single-instance store used when Redis is
// not configured.
type InMemIdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]*inMemRecord
}

func NewInMemIdempotencyStore(ttl time.Duration) *InMemIdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InMemIdempotencyStore{
		ttl:     ttl,
		records: make(map[string]*inMemRecord),
	}
}

func (s *InMemIdempotencyStore) GetOrLock(key string) (int, []byte, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key]; ok && time.Since(rec.createdAt) < s.ttl {
		return rec.status, rec.body, rec.processing, true
	}

	s.records[key] = &inMemRecord{processing: true, createdAt: time.Now()}
	return 0, nil, false, false
}

func (s *InMemIdempotencyStore) Save(key string, status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = &inMemRecord{status: status, body: body, createdAt: time.Now()}
}

func (s *InMemIdempotencyStore) Unlock(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}

// IdempotencyMiddleware replays cached responses for repeated citizen
// submits. Requests without the header pass straight through. Must run
// after CitizenAuth so keys are scoped per citizen.
func IdempotencyMiddleware(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		idemKey := c.GetHeader(HeaderIdempotencyKey)
		if idemKey == "" {
			c.Next()
			return
		}

		citizenVal, exists := c.Get(ContextCitizenKey)
		if !exists {
			c.Next()
			return
		}
		fullKey := citizenVal.(string) + ":" + idemKey

		status, body, processing, hit := store.GetOrLock(fullKey)
		if hit {
			if processing {
				c.JSON(http.StatusConflict, gin.H{"error": "request in progress"})
				c.Abort()
				return
			}
			c.Data(status, "application/json; charset=utf-8", body)
			c.Abort()
			return
		}

		w := &responseBodyWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// Server-side failures stay retryable; everything else replays.
		if c.Writer.Status() < 500 {
			store.Save(fullKey, c.Writer.Status(), w.body)
		} else {
			store.Unlock(fullKey)
		}
	}
}

type responseBodyWriter struct {
	gin.ResponseWriter
	body []byte
}

func (w *responseBodyWriter) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return w.ResponseWriter.Write(b)
}
