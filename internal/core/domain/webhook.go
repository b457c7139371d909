package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookProcessingStatus is the outcome recorded for an inbound webhook.
type WebhookProcessingStatus string

const (
	WebhookStatusProcessed WebhookProcessingStatus = "processed"
	WebhookStatusFailed    WebhookProcessingStatus = "failed"
)

// WebhookLog is an append-only audit record of inbound webhook
// processing. Used for replay and debugging, never for control flow.
type WebhookLog struct {
	ID        uuid.UUID               `json:"id"`
	Provider  string                  `json:"provider"`
	EventType string                  `json:"event_type"`
	Reference string                  `json:"reference"`
	Status    WebhookProcessingStatus `json:"status"`
	Error     *string                 `json:"error,omitempty"`
	Payload   []byte                  `json:"payload"` // Raw request body as received
	CreatedAt time.Time               `json:"created_at"`
}

// ProviderEvent is a vendor webhook normalized into the system's own
// vocabulary. Produced by a provider adapter; consumed by the reconciler.
type ProviderEvent struct {
	Provider              string            // paystack, flutterwave, vtpass, baxi, clubkonnect
	EventType             string            // Vendor event name, e.g. charge.success
	Reference             string            // Our transaction reference
	VendorStatus          string            // Vendor's raw status string
	Status                TransactionStatus // Normalized: pending, completed or failed
	ProviderTransactionID *string           // Vendor-assigned id, if present
	Reversal              bool              // True when the vendor reversed a settled transfer
	RawPayload            []byte            // Exact bytes received, stored as provider_response
}
