package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a new transaction within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `INSERT INTO transactions (id, reference, user_id, type, amount, status, metadata,
		provider_transaction_id, provider_response, failure_reason, created_at, completed_at, failed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = tx.Exec(ctx, query,
		t.ID, t.Reference, t.UserID, t.Type, t.Amount, t.Status, metadata,
		t.ProviderTransactionID, t.ProviderResponse, t.FailureReason,
		t.CreatedAt, t.CompletedAt, t.FailedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByReference fetches a transaction by its external reference.
// Returns nil without error when no row matches.
func (r *TransactionRepo) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	query := `SELECT id, reference, user_id, type, amount, status, metadata,
		provider_transaction_id, provider_response, failure_reason, created_at, completed_at, failed_at
		FROM transactions WHERE reference = $1`

	return scanTransaction(r.pool.QueryRow(ctx, query, reference))
}

// CompletePending claims the pending -> completed transition. The WHERE
// status = 'pending' guard makes the claim a single atomic statement:
// only one caller ever sees RowsAffected() == 1 for a given reference.
func (r *TransactionRepo) CompletePending(ctx context.Context, tx pgx.Tx, reference string, providerTxID *string, providerResponse string) (bool, error) {
	query := `UPDATE transactions
		SET status = 'completed',
		    completed_at = NOW(),
		    provider_transaction_id = COALESCE($2, provider_transaction_id),
		    provider_response = NULLIF($3, '')
		WHERE reference = $1 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, reference, providerTxID, providerResponse)
	if err != nil {
		return false, fmt.Errorf("complete pending transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FailPending claims the pending -> failed transition.
func (r *TransactionRepo) FailPending(ctx context.Context, tx pgx.Tx, reference string, reason string, providerResponse string) (bool, error) {
	query := `UPDATE transactions
		SET status = 'failed',
		    failed_at = NOW(),
		    failure_reason = $2,
		    provider_response = NULLIF($3, '')
		WHERE reference = $1 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, reference, reason, providerResponse)
	if err != nil {
		return false, fmt.Errorf("fail pending transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// TouchPending records the vendor transaction id on a still-pending row.
// A row already terminal is left untouched; that is not an error.
func (r *TransactionRepo) TouchPending(ctx context.Context, reference string, providerTxID *string) error {
	query := `UPDATE transactions
		SET provider_transaction_id = COALESCE($2, provider_transaction_id)
		WHERE reference = $1 AND status = 'pending'`

	if _, err := r.pool.Exec(ctx, query, reference, providerTxID); err != nil {
		return fmt.Errorf("touch pending transaction: %w", err)
	}
	return nil
}

// List fetches transactions with filtering and pagination, newest first.
func (r *TransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
	args = append(args, params.UserID)
	argIdx++

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argIdx))
		args = append(args, *params.Type)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= to_timestamp($%d)", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= to_timestamp($%d)", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	// Fetch page
	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, reference, user_id, type, amount, status, metadata,
		provider_transaction_id, provider_response, failure_reason, created_at, completed_at, failed_at
		FROM transactions %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var metadata []byte
		err := rows.Scan(
			&t.ID, &t.Reference, &t.UserID, &t.Type, &t.Amount, &t.Status, &metadata,
			&t.ProviderTransactionID, &t.ProviderResponse, &t.FailureReason,
			&t.CreatedAt, &t.CompletedAt, &t.FailedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
				return nil, 0, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, total, nil
}

// scanTransaction is a helper to scan a single row into a Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var metadata []byte
	err := row.Scan(
		&t.ID, &t.Reference, &t.UserID, &t.Type, &t.Amount, &t.Status, &metadata,
		&t.ProviderTransactionID, &t.ProviderResponse, &t.FailureReason,
		&t.CreatedAt, &t.CompletedAt, &t.FailedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return t, nil
}
