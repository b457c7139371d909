package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a user's spendable balance. The balance column is only
// ever mutated by the credit_wallet/debit_wallet stored procedures;
// application code reads it but never writes it directly.
type Wallet struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"` // In kobo, never negative
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
