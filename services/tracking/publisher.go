package tracking

import (
	"context"
	"time"

	"fixify/models"
	"fixify/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Topic returns the pub/sub channel for one booking's live updates.
func Topic(bookingID string) string {
	return "booking:track:" + bookingID
}

// Update is the payload published to a booking's tracking channel.
// Kind is "location" for position pings and "status" for lifecycle
// transitions. Delivery is at-most-once: a dropped update is superseded by
// the next ping.
type Update struct {
	Kind       string               `json:"kind"`
	BookingID  string               `json:"bookingId"`
	Status     models.BookingStatus `json:"status,omitempty"`
	Location   *models.LiveLocation `json:"location,omitempty"`
	DistanceKm float64              `json:"distanceKm,omitempty"`
	ETAMinutes int                  `json:"etaMinutes,omitempty"`
	At         time.Time            `json:"at"`
}

// Publisher pushes payloads to a topic, fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// RedisPublisher implements Publisher on Redis pub/sub.
type RedisPublisher struct {
	Client *redis.Client
}

func NewRedisPublisher() *RedisPublisher {
	return &RedisPublisher{Client: utils.GetCacheClient()}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.Client.Publish(ctx, topic, payload).Err()
}

// publish sends best-effort: failures are logged, never propagated, so a
// disconnected subscriber can never fail the caller's request.
func publish(ctx context.Context, pub Publisher, topic string, payload []byte) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, topic, payload); err != nil {
		utils.GetLogger().Warn("tracking publish failed",
			zap.String("topic", topic), zap.Error(err))
	}
}
