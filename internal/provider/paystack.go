package provider

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"topup-pro/internal/core/domain"
	"topup-pro/pkg/apperror"
)

// HeaderPaystackSignature carries hex HMAC-SHA512 of the raw body.
const HeaderPaystackSignature = "x-paystack-signature"

// paystackEvents maps Paystack event names to normalized statuses.
var paystackEvents = StatusMap{
	"charge.success":    domain.TransactionStatusCompleted,
	"charge.failed":     domain.TransactionStatusFailed,
	"transfer.success":  domain.TransactionStatusCompleted,
	"transfer.failed":   domain.TransactionStatusFailed,
	"transfer.reversed": domain.TransactionStatusFailed,
}

// PaystackAdapter verifies and normalizes Paystack webhooks.
type PaystackAdapter struct {
	webhookKey string
}

// NewPaystackAdapter creates a Paystack webhook adapter.
func NewPaystackAdapter(webhookKey string) *PaystackAdapter {
	return &PaystackAdapter{webhookKey: webhookKey}
}

// Name returns the provider name.
func (a *PaystackAdapter) Name() string {
	return "paystack"
}

// VerifySignature checks x-paystack-signature against HMAC-SHA512 of the
// exact body bytes. Constant-time comparison.
func (a *PaystackAdapter) VerifySignature(body []byte, header http.Header) error {
	sig := header.Get(HeaderPaystackSignature)
	if sig == "" {
		return apperror.ErrMissingWebhookSignature()
	}

	mac := hmac.New(sha512.New, []byte(a.webhookKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return apperror.ErrInvalidWebhookSignature()
	}
	return nil
}

type paystackEnvelope struct {
	Event string `json:"event"`
	Data  struct {
		ID        int64  `json:"id"`
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"` // Kobo
	} `json:"data"`
}

// ParseEvent normalizes a Paystack webhook body.
func (a *PaystackAdapter) ParseEvent(body []byte) (*domain.ProviderEvent, error) {
	var env paystackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperror.Wrap("TXN_003", "Malformed webhook payload", http.StatusBadRequest, fmt.Errorf("paystack payload: %w", err))
	}
	if env.Data.Reference == "" {
		return nil, apperror.ErrMalformedPayload()
	}

	var providerTxID *string
	if env.Data.ID != 0 {
		s := strconv.FormatInt(env.Data.ID, 10)
		providerTxID = &s
	}

	return &domain.ProviderEvent{
		Provider:              a.Name(),
		EventType:             env.Event,
		Reference:             env.Data.Reference,
		VendorStatus:          env.Event,
		Status:                paystackEvents.Normalize(env.Event),
		ProviderTransactionID: providerTxID,
		Reversal:              env.Event == "transfer.reversed",
		RawPayload:            body,
	}, nil
}
