package ports

import (
	"context"

	"topup-pro/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepository defines persistence operations for transactions.
// Methods accepting pgx.Tx run inside transaction blocks so a state
// transition and its ledger movement commit together.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	GetByReference(ctx context.Context, reference string) (*domain.Transaction, error)

	// CompletePending and FailPending claim the single honored transition
	// out of pending with a conditional update (WHERE status = 'pending').
	// They return false when no pending row matched, which callers treat
	// as a duplicate delivery.
	CompletePending(ctx context.Context, tx pgx.Tx, reference string, providerTxID *string, providerResponse string) (bool, error)
	FailPending(ctx context.Context, tx pgx.Tx, reference string, reason string, providerResponse string) (bool, error)

	// TouchPending records the vendor transaction id on a still-pending
	// row without transitioning it.
	TouchPending(ctx context.Context, reference string, providerTxID *string) error

	List(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// TransactionListParams holds filter + pagination for listing transactions.
type TransactionListParams struct {
	UserID   uuid.UUID
	Status   *domain.TransactionStatus
	Type     *domain.TransactionType
	From     *int64 // Unix timestamp
	To       *int64 // Unix timestamp
	Page     int
	PageSize int
}

// LedgerRepository is the sole sanctioned path to mutate wallet balance.
// Credit and Debit invoke the credit_wallet/debit_wallet stored
// procedures, which are atomic and idempotent by reference at the
// database layer.
type LedgerRepository interface {
	Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, reference, description string) error
	Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, reference, description string) error
	CreateWallet(ctx context.Context, wallet *domain.Wallet) error
	GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
}

// WebhookLogRepository persists the append-only webhook audit trail.
type WebhookLogRepository interface {
	Append(ctx context.Context, log *domain.WebhookLog) error
	ListByReference(ctx context.Context, reference string) ([]domain.WebhookLog, error)
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ContactRepository defines persistence operations for saved beneficiaries.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error)
	Delete(ctx context.Context, userID, contactID uuid.UUID) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
