package service

import (
	"context"
	"fmt"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/pkg/apperror"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReportingServiceImpl serves the read side: wallet balance and
// transaction history.
type ReportingServiceImpl struct {
	ledger ports.LedgerRepository
	txRepo ports.TransactionRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(ledger ports.LedgerRepository, txRepo ports.TransactionRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		ledger: ledger,
		txRepo: txRepo,
	}
}

// GetWalletBalance returns the user's balance in kobo and its currency.
func (s *ReportingServiceImpl) GetWalletBalance(ctx context.Context, userID uuid.UUID) (int64, string, error) {
	wallet, err := s.ledger.GetWallet(ctx, userID)
	if err != nil {
		return 0, "", apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return 0, "", apperror.ErrWalletNotFound()
	}
	return wallet.Balance, wallet.Currency, nil
}

// ListTransactions returns a page of the user's transaction history,
// newest first, plus the total match count.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}

	txns, total, err := s.txRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}
