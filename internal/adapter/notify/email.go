package notify

import (
	"context"

	"topup-pro/internal/core/domain"
)

// EmailNotifier delivers notifications through a transactional mail API.
type EmailNotifier struct {
	client HTTPClient
	url    string
	apiKey string
}

// NewEmailNotifier creates an email notification channel.
func NewEmailNotifier(client HTTPClient, url, apiKey string) *EmailNotifier {
	return &EmailNotifier{client: client, url: url, apiKey: apiKey}
}

// Name returns the channel name.
func (n *EmailNotifier) Name() string {
	return "email"
}

// Send posts the notification to the mail API.
func (n *EmailNotifier) Send(ctx context.Context, notif domain.Notification) error {
	return postJSON(ctx, n.client, n.url, n.apiKey, map[string]any{
		"user_id":   notif.UserID.String(),
		"subject":   notif.Title,
		"body":      notif.Body,
		"reference": notif.Reference,
	})
}
