package domain

import "github.com/google/uuid"

// NotificationKind classifies a user-facing signal.
type NotificationKind string

const (
	NotificationTransactionCompleted NotificationKind = "transaction_completed"
	NotificationTransactionFailed    NotificationKind = "transaction_failed"
	NotificationWalletFunded         NotificationKind = "wallet_funded"
	NotificationWalletRefunded       NotificationKind = "wallet_refunded"
)

// Notification is the structured payload handed to every channel during
// fan-out. Delivery is best-effort and fire-and-forget.
type Notification struct {
	UserID    uuid.UUID        `json:"user_id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Body      string           `json:"body"`
	Reference string           `json:"reference"`
	Amount    int64            `json:"amount"` // In kobo
}
