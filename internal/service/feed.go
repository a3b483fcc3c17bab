package service

import (
	"context"
	"sync"

	"github.com/CivicGate/civigate/internal/pkg/logger"
	"github.com/CivicGate/civigate/internal/repository"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Feed relays the new-report notification channel to connected
// dashboard websockets. Each client gets a small token bucket so a
// burst of reports cannot flood a slow connection; messages beyond the
// budget are skipped for that client.
type Feed struct {
	client  *redis.Client
	channel string

	mu      sync.Mutex
	conns   map[*websocket.Conn]*rate.Limiter
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewFeed(rc *repository.RedisClient, channel string) *Feed {
	return &Feed{
		client:  rc.Client,
		channel: channel,
		conns:   make(map[*websocket.Conn]*rate.Limiter),
		stopped: make(chan struct{}),
	}
}

func (f *Feed) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	go f.pump(ctx)
}

func (f *Feed) Stop() {
	if f.cancel != nil {
		f.cancel()
		<-f.stopped
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.conns {
		_ = conn.Close()
	}
	f.conns = make(map[*websocket.Conn]*rate.Limiter)
}

// Register adds a connection to the fan-out set. The feed owns the
// write side from here on; the caller keeps reading to detect close.
func (f *Feed) Register(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conns[conn] = rate.NewLimiter(rate.Limit(5), 10)
}

func (f *Feed) Unregister(conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conns, conn)
	_ = conn.Close()
}

func (f *Feed) pump(ctx context.Context) {
	defer close(f.stopped)

	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			f.broadcast([]byte(msg.Payload))
		}
	}
}

func (f *Feed) broadcast(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for conn, limiter := range f.conns {
		if !limiter.Allow() {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Debug("feed: dropping client", "error", err)
			delete(f.conns, conn)
			_ = conn.Close()
		}
	}
}
