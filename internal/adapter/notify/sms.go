package notify

import (
	"context"

	"topup-pro/internal/core/domain"
)

// SMSNotifier delivers notifications through an SMS gateway API.
type SMSNotifier struct {
	client HTTPClient
	url    string
	apiKey string
}

// NewSMSNotifier creates an SMS notification channel.
func NewSMSNotifier(client HTTPClient, url, apiKey string) *SMSNotifier {
	return &SMSNotifier{client: client, url: url, apiKey: apiKey}
}

// Name returns the channel name.
func (n *SMSNotifier) Name() string {
	return "sms"
}

// Send posts the notification to the SMS gateway.
func (n *SMSNotifier) Send(ctx context.Context, notif domain.Notification) error {
	return postJSON(ctx, n.client, n.url, n.apiKey, map[string]any{
		"user_id":   notif.UserID.String(),
		"message":   notif.Body,
		"reference": notif.Reference,
	})
}
