// Package realtime fans out freshly created notifications over Redis pub/sub.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"docassist/internal/domain/models"
	"docassist/internal/domain/services"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notifications:"

// subscriberBuffer is how many undelivered notifications a slow subscriber may hold
const subscriberBuffer = 16

// Hub publishes and subscribes to per-user notification channels
type Hub struct {
	client *redis.Client
	logger *slog.Logger
}

var (
	_ services.NotificationPublisher  = (*Hub)(nil)
	_ services.NotificationSubscriber = (*Hub)(nil)
)

// NewHub connects to Redis and verifies the connection
func NewHub(redisURL string, logger *slog.Logger) (*Hub, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Hub{client: client, logger: logger}, nil
}

// NewHubWithClient creates a hub from an existing Redis client
func NewHubWithClient(client *redis.Client, logger *slog.Logger) *Hub {
	return &Hub{client: client, logger: logger}
}

// Channel returns the pub/sub channel for a user
func Channel(userID string) string {
	return channelPrefix + userID
}

// Publish sends n to the owner's channel
func (h *Hub) Publish(ctx context.Context, n *models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := h.client.Publish(ctx, Channel(n.UserID), data).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Subscribe returns a channel of the caller's notifications. The channel is
// closed once ctx is done. Messages that cannot be decoded are logged and skipped;
// when the subscriber falls behind, further messages are dropped.
func (h *Hub) Subscribe(ctx context.Context, caller *models.Caller) (<-chan models.Notification, error) {
	pubsub := h.client.Subscribe(ctx, Channel(caller.UserID))

	// Wait for the subscription confirmation so no publish after return is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan models.Notification, subscriberBuffer)
	messages := pubsub.Channel()

	go func() {
		defer close(out)
		defer pubsub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var n models.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					h.logger.Warn("dropping undecodable notification", "channel", msg.Channel, "error", err)
					continue
				}
				select {
				case out <- n:
				default:
					h.logger.Warn("subscriber behind, dropping notification", "user_id", caller.UserID, "notification_id", n.ID)
				}
			}
		}
	}()

	return out, nil
}

// Ping checks if Redis is reachable
func (h *Hub) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (h *Hub) Close() error {
	return h.client.Close()
}
