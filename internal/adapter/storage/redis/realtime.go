package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"topup-pro/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// RealtimeNotifier implements ports.Notifier over Redis pub/sub. Mobile
// and web clients subscribe to their per-user channel for live balance
// and transaction updates.
type RealtimeNotifier struct {
	client *goredis.Client
}

// NewRealtimeNotifier creates a pub/sub backed notification channel.
func NewRealtimeNotifier(client *goredis.Client) *RealtimeNotifier {
	return &RealtimeNotifier{client: client}
}

// Name returns the channel name.
func (n *RealtimeNotifier) Name() string {
	return "realtime"
}

// Send publishes the notification on the user's event channel.
func (n *RealtimeNotifier) Send(ctx context.Context, notif domain.Notification) error {
	payload, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	channel := fmt.Sprintf("user:%s:events", notif.UserID)
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
