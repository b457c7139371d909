package service

import (
	"context"
	"fmt"
	"time"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/internal/metrics"
	"topup-pro/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PurchaseServiceImpl implements ports.PurchaseService.
// Spend transactions are debited optimistically: the wallet is debited
// and the pending row created in one database transaction before the
// provider is invoked, so a provider failure always has a debit to
// refund against.
type PurchaseServiceImpl struct {
	txRepo     ports.TransactionRepository
	ledger     ports.LedgerRepository
	transactor ports.DBTransactor
	vtuClient  ports.VTUClient
	dispatcher ports.NotificationDispatcher
	log        zerolog.Logger
}

// NewPurchaseService creates a new PurchaseServiceImpl.
func NewPurchaseService(
	txRepo ports.TransactionRepository,
	ledger ports.LedgerRepository,
	transactor ports.DBTransactor,
	vtuClient ports.VTUClient,
	dispatcher ports.NotificationDispatcher,
	log zerolog.Logger,
) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		txRepo:     txRepo,
		ledger:     ledger,
		transactor: transactor,
		vtuClient:  vtuClient,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Purchase debits the wallet, records a pending transaction and submits
// the vend. A synchronous vend rejection takes the same fail-and-refund
// path the webhook reconciler uses.
func (s *PurchaseServiceImpl) Purchase(ctx context.Context, req ports.PurchaseRequest) (*domain.Transaction, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if !req.Type.IsSpend() || req.Type == domain.TransactionTypeTransfer {
		return nil, apperror.Validation(fmt.Sprintf("unsupported purchase type: %s", req.Type))
	}
	if err := req.Metadata.Validate(req.Type); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	reference := NewReference(req.Type)
	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:        uuid.New(),
		Reference: reference,
		UserID:    req.UserID,
		Type:      req.Type,
		Amount:    req.Amount,
		Status:    domain.TransactionStatusPending,
		Metadata:  req.Metadata,
		CreatedAt: now,
	}

	// Debit + pending row commit together: the provider is only invoked
	// once the money is safely held.
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	desc := fmt.Sprintf("%s purchase for %s", req.Type, req.Metadata.Recipient())
	if err := s.ledger.Debit(ctx, dbTx, req.UserID, req.Amount, reference, desc); err != nil {
		return nil, err
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	result, err := s.vtuClient.Vend(ctx, ports.VendRequest{
		Provider:  req.Provider,
		Reference: reference,
		Type:      req.Type,
		Amount:    req.Amount,
		Metadata:  req.Metadata,
	})
	if err != nil {
		// Provider unreachable: fail and refund now rather than strand
		// the debit behind a webhook that will never come.
		s.failAndRefund(ctx, txn, fmt.Sprintf("provider error: %v", err))
		return nil, apperror.ErrVendFailed(err.Error())
	}
	if !result.Accepted {
		s.failAndRefund(ctx, txn, result.FailureReason)
		return nil, apperror.ErrVendFailed(result.FailureReason)
	}

	if result.ProviderTransactionID != nil {
		if err := s.txRepo.TouchPending(ctx, reference, result.ProviderTransactionID); err != nil {
			s.log.Warn().Err(err).Str("reference", reference).Msg("failed to record provider transaction id")
		}
		txn.ProviderTransactionID = result.ProviderTransactionID
	}

	// Some providers deliver synchronously; most confirm via webhook.
	if result.Delivered {
		if err := s.completeDelivered(ctx, txn, result); err != nil {
			// The vend went through; the webhook redelivery will settle it.
			s.log.Error().Err(err).Str("reference", reference).Msg("failed to complete delivered vend, awaiting callback")
		}
	}

	s.log.Info().
		Str("reference", reference).
		Str("type", string(req.Type)).
		Str("provider", req.Provider).
		Int64("amount", req.Amount).
		Bool("delivered", result.Delivered).
		Msg("purchase submitted")

	return txn, nil
}

// failAndRefund marks the transaction failed and returns the debit,
// through the same conditional-claim path the reconciler uses.
func (s *PurchaseServiceImpl) failAndRefund(ctx context.Context, txn *domain.Transaction, reason string) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("reference", txn.Reference).Msg("begin refund tx failed")
		return
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	claimed, err := s.txRepo.FailPending(ctx, dbTx, txn.Reference, reason, "")
	if err != nil {
		s.log.Error().Err(err).Str("reference", txn.Reference).Msg("fail pending failed")
		return
	}
	if !claimed {
		// A racing webhook already settled it.
		return
	}

	refundDesc := fmt.Sprintf("Refund for failed %s %s", txn.Type, txn.Reference)
	if err := s.ledger.Credit(ctx, dbTx, txn.UserID, txn.Amount, domain.RefundReference(txn.Reference), refundDesc); err != nil {
		s.log.Error().Err(err).Str("reference", txn.Reference).Msg("refund credit failed")
		return
	}
	if err := dbTx.Commit(ctx); err != nil {
		s.log.Error().Err(err).Str("reference", txn.Reference).Msg("commit refund failed")
		return
	}

	metrics.RefundsTotal.Inc()
	txn.Status = domain.TransactionStatusFailed
	txn.FailureReason = &reason

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(buildNotification(txn, domain.TransactionStatusFailed))
	}
}

// completeDelivered settles a synchronously-delivered vend.
func (s *PurchaseServiceImpl) completeDelivered(ctx context.Context, txn *domain.Transaction, result *ports.VendResult) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	claimed, err := s.txRepo.CompletePending(ctx, dbTx, txn.Reference, result.ProviderTransactionID, "")
	if err != nil {
		return fmt.Errorf("complete pending: %w", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	if claimed {
		txn.Status = domain.TransactionStatusCompleted
		if s.dispatcher != nil {
			s.dispatcher.Dispatch(buildNotification(txn, domain.TransactionStatusCompleted))
		}
	}
	return nil
}
