package notify

import (
	"context"

	"topup-pro/internal/core/domain"
)

// PushNotifier delivers notifications through a mobile push relay.
type PushNotifier struct {
	client HTTPClient
	url    string
	apiKey string
}

// NewPushNotifier creates a push notification channel.
func NewPushNotifier(client HTTPClient, url, apiKey string) *PushNotifier {
	return &PushNotifier{client: client, url: url, apiKey: apiKey}
}

// Name returns the channel name.
func (n *PushNotifier) Name() string {
	return "push"
}

// Send posts the notification to the push relay.
func (n *PushNotifier) Send(ctx context.Context, notif domain.Notification) error {
	return postJSON(ctx, n.client, n.url, n.apiKey, map[string]any{
		"user_id":   notif.UserID.String(),
		"title":     notif.Title,
		"body":      notif.Body,
		"kind":      string(notif.Kind),
		"reference": notif.Reference,
	})
}
