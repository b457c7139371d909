package provider

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"topup-pro/internal/core/domain"
	"topup-pro/pkg/apperror"
)

// HeaderFlutterwaveHash carries Flutterwave's static shared secret.
const HeaderFlutterwaveHash = "verif-hash"

// flutterwaveStatuses maps the data.status vocabulary.
var flutterwaveStatuses = StatusMap{
	"successful": domain.TransactionStatusCompleted,
	"failed":     domain.TransactionStatusFailed,
	"pending":    domain.TransactionStatusPending,
}

// FlutterwaveAdapter verifies and normalizes Flutterwave webhooks.
// Flutterwave does not sign the body; it sends a static shared secret in
// the verif-hash header.
type FlutterwaveAdapter struct {
	verifHash string
}

// NewFlutterwaveAdapter creates a Flutterwave webhook adapter.
func NewFlutterwaveAdapter(verifHash string) *FlutterwaveAdapter {
	return &FlutterwaveAdapter{verifHash: verifHash}
}

// Name returns the provider name.
func (a *FlutterwaveAdapter) Name() string {
	return "flutterwave"
}

// VerifySignature compares the verif-hash header to the configured
// shared secret in constant time.
func (a *FlutterwaveAdapter) VerifySignature(body []byte, header http.Header) error {
	hash := header.Get(HeaderFlutterwaveHash)
	if hash == "" {
		return apperror.ErrMissingWebhookSignature()
	}
	if subtle.ConstantTimeCompare([]byte(hash), []byte(a.verifHash)) != 1 {
		return apperror.ErrInvalidWebhookSignature()
	}
	return nil
}

type flutterwaveEnvelope struct {
	Event string `json:"event"` // charge.completed, transfer.completed
	Data  struct {
		ID     int64  `json:"id"`
		TxRef  string `json:"tx_ref"`
		Status string `json:"status"` // successful, failed, pending
		Amount int64  `json:"amount"`
	} `json:"data"`
}

// ParseEvent normalizes a Flutterwave webhook body. The event name only
// says which object completed; the authoritative outcome is data.status.
func (a *FlutterwaveAdapter) ParseEvent(body []byte) (*domain.ProviderEvent, error) {
	var env flutterwaveEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperror.Wrap("TXN_003", "Malformed webhook payload", http.StatusBadRequest, fmt.Errorf("flutterwave payload: %w", err))
	}
	if env.Data.TxRef == "" {
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
		Reference:             env.Data.TxRef,
		VendorStatus:          env.Data.Status,
		Status:                flutterwaveStatuses.Normalize(env.Data.Status),
		ProviderTransactionID: providerTxID,
		RawPayload:            body,
	}, nil
}
