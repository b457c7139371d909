package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents what the money movement paid for.
type TransactionType string

const (
	TransactionTypeAirtime     TransactionType = "airtime"
	TransactionTypeData        TransactionType = "data"
	TransactionTypeCable       TransactionType = "cable"
	TransactionTypeElectricity TransactionType = "electricity"
	TransactionTypeFunding     TransactionType = "wallet_funding"
	TransactionTypeTransfer    TransactionType = "transfer"
)

// IsSpend reports whether the wallet is debited when the transaction is
// initiated. Spend transactions are refunded on provider failure.
func (t TransactionType) IsSpend() bool {
	switch t {
	case TransactionTypeAirtime, TransactionTypeData, TransactionTypeCable,
		TransactionTypeElectricity, TransactionTypeTransfer:
		return true
	}
	return false
}

// IsFunding reports whether the wallet is credited on provider confirmation.
func (t TransactionType) IsFunding() bool {
	return t == TransactionTypeFunding
}

// TransactionStatus represents the lifecycle state of a transaction.
// Exactly one transition out of pending is ever honored.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction represents a wallet money movement keyed by an
// external-facing reference string.
type Transaction struct {
	ID                    uuid.UUID         `json:"id"`
	Reference             string            `json:"reference"`
	UserID                uuid.UUID         `json:"user_id"`
	Type                  TransactionType   `json:"type"`
	Amount                int64             `json:"amount"` // In kobo (minor units)
	Status                TransactionStatus `json:"status"`
	Metadata              Metadata          `json:"metadata"`
	ProviderTransactionID *string           `json:"provider_transaction_id,omitempty"`
	ProviderResponse      *string           `json:"-"` // Raw vendor payload from the confirming callback
	FailureReason         *string           `json:"failure_reason,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	CompletedAt           *time.Time        `json:"completed_at,omitempty"`
	FailedAt              *time.Time        `json:"failed_at,omitempty"`
}

// IsTerminal returns true if the transaction is in a final state.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusCompleted ||
		t.Status == TransactionStatusFailed ||
		t.Status == TransactionStatusCancelled
}

// RefundReference derives the synthetic ledger reference for a refund of
// the given transaction reference.
func RefundReference(reference string) string {
	return "REFUND-" + reference
}

// ReversalReference derives the synthetic ledger reference used when a
// gateway reverses an already-settled transfer.
func ReversalReference(reference string) string {
	return "REVERSAL-" + reference
}
