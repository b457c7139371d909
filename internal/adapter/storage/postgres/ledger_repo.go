package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"topup-pro/internal/core/domain"
	"topup-pro/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// LedgerRepo implements ports.LedgerRepository. Balance mutations go
// through the credit_wallet/debit_wallet stored procedures: each moves
// the balance and appends a ledger entry in one statement, and the
// unique constraint on ledger_entries.reference rejects replays.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Credit adds amount kobo to the user's wallet under the given reference.
func (r *LedgerRepo) Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, reference, description string) error {
	if _, err := tx.Exec(ctx, `SELECT credit_wallet($1, $2, $3, $4)`, userID, amount, reference, description); err != nil {
		return fmt.Errorf("credit wallet: %w", mapLedgerError(err))
	}
	return nil
}

// Debit removes amount kobo from the user's wallet under the given
// reference. Returns apperror.ErrInsufficientBalance when the stored
// procedure rejects the movement.
func (r *LedgerRepo) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, reference, description string) error {
	if _, err := tx.Exec(ctx, `SELECT debit_wallet($1, $2, $3, $4)`, userID, amount, reference, description); err != nil {
		mapped := mapLedgerError(err)
		var appErr *apperror.AppError
		if errors.As(mapped, &appErr) {
			return mapped
		}
		return fmt.Errorf("debit wallet: %w", mapped)
	}
	return nil
}

// CreateWallet inserts a new zero-balance wallet.
func (r *LedgerRepo) CreateWallet(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (id, user_id, balance, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, query, w.ID, w.UserID, w.Balance, w.Currency, w.CreatedAt, w.UpdatedAt); err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetWallet fetches a user's wallet. Returns nil without error when the
// user has no wallet.
func (r *LedgerRepo) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	query := `SELECT id, user_id, balance, currency, created_at, updated_at
		FROM wallets WHERE user_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.Balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// mapLedgerError translates stored procedure raises into typed errors.
// debit_wallet raises P0001 with an "insufficient" message when the
// balance cannot cover the debit; the reference uniqueness constraint
// surfaces as 23505.
func mapLedgerError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == "P0001" && strings.Contains(strings.ToLower(pgErr.Message), "insufficient"):
		return apperror.ErrInsufficientBalance()
	case pgErr.Code == "23505":
		return apperror.ErrDuplicateReference()
	}
	return err
}
