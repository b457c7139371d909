package provider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"topup-pro/internal/core/domain"
	"topup-pro/pkg/apperror"
)

// Per-provider vendor status vocabularies. New providers are new tables,
// not new code.
var (
	vtpassStatuses = StatusMap{
		"delivered":  domain.TransactionStatusCompleted,
		"successful": domain.TransactionStatusCompleted,
		"failed":     domain.TransactionStatusFailed,
		"reversed":   domain.TransactionStatusFailed,
		"pending":    domain.TransactionStatusPending,
		"initiated":  domain.TransactionStatusPending,
		"unresolved": domain.TransactionStatusPending,
	}

	baxiStatuses = StatusMap{
		"success":    domain.TransactionStatusCompleted,
		"delivered":  domain.TransactionStatusCompleted,
		"failed":     domain.TransactionStatusFailed,
		"reversed":   domain.TransactionStatusFailed,
		"pending":    domain.TransactionStatusPending,
		"processing": domain.TransactionStatusPending,
	}

	clubkonnectStatuses = StatusMap{
		"order_completed": domain.TransactionStatusCompleted,
		"order_failed":    domain.TransactionStatusFailed,
		"order_cancelled": domain.TransactionStatusFailed,
		"order_received":  domain.TransactionStatusPending,
	}
)

// NewVTPassAdapter creates the VTPass webhook adapter.
func NewVTPassAdapter(secret string) *VTUAdapter {
	return NewVTUAdapter("vtpass", secret, vtpassStatuses)
}

// NewBaxiAdapter creates the Baxi webhook adapter.
func NewBaxiAdapter(secret string) *VTUAdapter {
	return NewVTUAdapter("baxi", secret, baxiStatuses)
}

// NewClubkonnectAdapter creates the Clubkonnect webhook adapter.
func NewClubkonnectAdapter(secret string) *VTUAdapter {
	return NewVTUAdapter("clubkonnect", secret, clubkonnectStatuses)
}

// VTUAdapter verifies and normalizes VTU provider webhooks. All VTU
// providers sign with hex HMAC-SHA256 over the raw body in an
// x-<provider>-signature header; they differ only in status vocabulary.
type VTUAdapter struct {
	name     string
	secret   string
	statuses StatusMap
}

// NewVTUAdapter creates a VTU adapter from a status table.
func NewVTUAdapter(name, secret string, statuses StatusMap) *VTUAdapter {
	return &VTUAdapter{name: name, secret: secret, statuses: statuses}
}

// Name returns the provider name.
func (a *VTUAdapter) Name() string {
	return a.name
}

// SignatureHeader returns the provider-specific signature header name.
func (a *VTUAdapter) SignatureHeader() string {
	return fmt.Sprintf("x-%s-signature", a.name)
}

// VerifySignature checks the provider signature header against
// HMAC-SHA256 of the exact body bytes. Constant-time comparison.
func (a *VTUAdapter) VerifySignature(body []byte, header http.Header) error {
	sig := header.Get(a.SignatureHeader())
	if sig == "" {
		return apperror.ErrMissingWebhookSignature()
	}

	mac := hmac.New(sha256.New, []byte(a.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return apperror.ErrInvalidWebhookSignature()
	}
	return nil
}

type vtuEnvelope struct {
	RequestID     string `json:"request_id"`
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	EventType     string `json:"type"`
}

// ParseEvent normalizes a VTU provider webhook body. Providers disagree
// on whether our reference travels as request_id or reference; the first
// non-empty one wins.
func (a *VTUAdapter) ParseEvent(body []byte) (*domain.ProviderEvent, error) {
	var env vtuEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperror.Wrap("TXN_003", "Malformed webhook payload", http.StatusBadRequest, fmt.Errorf("%s payload: %w", a.name, err))
	}

	reference := env.RequestID
	if reference == "" {
		reference = env.Reference
	}
	if reference == "" {
		return nil, apperror.ErrMalformedPayload()
	}

	var providerTxID *string
	if env.TransactionID != "" {
		id := env.TransactionID
		providerTxID = &id
	}

	eventType := env.EventType
	if eventType == "" {
		eventType = "vend.update"
	}

	return &domain.ProviderEvent{
		Provider:              a.name,
		EventType:             eventType,
		Reference:             reference,
		VendorStatus:          env.Status,
		Status:                a.statuses.Normalize(env.Status),
		ProviderTransactionID: providerTxID,
		RawPayload:            body,
	}, nil
}
