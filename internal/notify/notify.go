package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Publisher pushes session events to whoever is watching the session channel.
// Publishing is fire-and-forget; delivery failures never affect the session.
type Publisher interface {
	Publish(ctx context.Context, sessionID string, event any)
}

// Channel names the per-session pub/sub channel.
func Channel(sessionID string) string {
	return "call:" + sessionID + ":events"
}

type RedisPublisher struct {
	rdb *redis.Client
	log *logrus.Logger
}

func NewRedisPublisher(rdb *redis.Client, log *logrus.Logger) *RedisPublisher {
	if log == nil {
		log = logrus.New()
	}
	return &RedisPublisher{rdb: rdb, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, sessionID string, event any) {
	b, err := json.Marshal(event)
	if err != nil {
		p.log.WithError(err).Warn("failed to encode session event")
		return
	}
	if err := p.rdb.Publish(ctx, Channel(sessionID), b).Err(); err != nil {
		p.log.WithError(err).WithField("session_id", sessionID).Warn("failed to publish session event")
	}
}

// NopPublisher drops every event. Used when redis is not wired, and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) {}
