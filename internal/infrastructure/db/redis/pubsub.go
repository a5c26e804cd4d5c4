package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// DefaultChannel carries stored notifications to every API instance.
const DefaultChannel = "notifications"

// NotificationPublisher implements ports.NotificationPublisher on Redis pub/sub
// so a notification raised on one instance reaches sockets held by another.
type NotificationPublisher struct {
	client  redis.Cmdable
	channel string
}

func NewNotificationPublisher(client redis.Cmdable, channel string) *NotificationPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &NotificationPublisher{client: client, channel: channel}
}

func (p *NotificationPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscribe delivers every notification published on channel to handle until
// ctx is cancelled. Undecodable messages are logged and skipped.
func Subscribe(ctx context.Context, client *redis.Client, channel string, log zerolog.Logger, handle func(*domain.Notification)) error {
	if channel == "" {
		channel = DefaultChannel
	}
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var n domain.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("dropping malformed notification")
				continue
			}
			handle(&n)
		}
	}
}
