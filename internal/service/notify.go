package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/CivicGate/civigate/internal/model"
	"github.com/CivicGate/civigate/internal/pkg/logger"
	"github.com/CivicGate/civigate/internal/repository"
	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes new-report events to a pub/sub channel for
// downstream delivery (staff dashboards, push relays). The publish is
// fire-and-forget: it runs detached from the request and its failure is
// logged and discarded, never surfaced to the creating citizen.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(rc *repository.RedisClient, channel string) *RedisNotifier {
	return &RedisNotifier{client: rc.Client, channel: channel}
}

func (n *RedisNotifier) PublishNewReport(ev model.NewReportEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		payload, err := json.Marshal(ev)
		if err != nil {
			logger.Warn("notify: marshal failed", "error", err)
			return
		}
		if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
			logger.Warn("notify: publish failed", "error", err, "report_id", ev.ReportID)
		}
	}()
}
