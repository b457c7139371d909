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

// dedupeTTL bounds how long a delivery claim shadows redeliveries. The
// conditional transition in the store is the authority; this only saves
// round-trips on provider retry storms.
const dedupeTTL = 10 * time.Minute

// ReconcilerImpl implements ports.Reconciler.
type ReconcilerImpl struct {
	txRepo     ports.TransactionRepository
	ledger     ports.LedgerRepository
	logRepo    ports.WebhookLogRepository
	dedupe     ports.EventDedupeStore
	transactor ports.DBTransactor
	dispatcher ports.NotificationDispatcher
	log        zerolog.Logger
}

// NewReconciler creates a ReconcilerImpl. dedupe may be nil (fast path
// disabled); dispatcher may be nil (notifications disabled).
func NewReconciler(
	txRepo ports.TransactionRepository,
	ledger ports.LedgerRepository,
	logRepo ports.WebhookLogRepository,
	dedupe ports.EventDedupeStore,
	transactor ports.DBTransactor,
	dispatcher ports.NotificationDispatcher,
	log zerolog.Logger,
) *ReconcilerImpl {
	return &ReconcilerImpl{
		txRepo:     txRepo,
		ledger:     ledger,
		logRepo:    logRepo,
		dedupe:     dedupe,
		transactor: transactor,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Reconcile applies at most one transition for the event and appends a
// webhook log row recording what happened. A returned error means the
// caller should answer 5xx so the provider's retry mechanism redelivers.
func (s *ReconcilerImpl) Reconcile(ctx context.Context, event *domain.ProviderEvent) (ports.ReconcileOutcome, error) {
	dedupeKey := fmt.Sprintf("%s:%s", event.Reference, event.VendorStatus)

	if s.dedupe != nil {
		first, err := s.dedupe.ClaimEvent(ctx, event.Provider, dedupeKey, dedupeTTL)
		if err != nil {
			s.log.Warn().Err(err).Str("provider", event.Provider).Msg("dedupe store unavailable, continuing")
		} else if !first {
			s.log.Debug().
				Str("provider", event.Provider).
				Str("reference", event.Reference).
				Msg("duplicate delivery short-circuited by dedupe store")
			metrics.ReconciliationsTotal.WithLabelValues(string(ports.OutcomeDuplicate)).Inc()
			s.appendLog(ctx, event, domain.WebhookStatusProcessed, strPtr("duplicate delivery"))
			return ports.OutcomeDuplicate, nil
		}
	}

	outcome, err := s.apply(ctx, event)
	if err != nil {
		// Release the claim so the provider's retry is not shadowed.
		if s.dedupe != nil {
			if relErr := s.dedupe.ReleaseEvent(ctx, event.Provider, dedupeKey); relErr != nil {
				s.log.Warn().Err(relErr).Msg("failed to release dedupe claim")
			}
		}
		msg := err.Error()
		s.appendLog(ctx, event, domain.WebhookStatusFailed, &msg)
		metrics.WebhookEventsTotal.WithLabelValues(event.Provider, "failed").Inc()
		return outcome, err
	}

	metrics.ReconciliationsTotal.WithLabelValues(string(outcome)).Inc()
	metrics.WebhookEventsTotal.WithLabelValues(event.Provider, "processed").Inc()

	var note *string
	if outcome != ports.OutcomeApplied {
		note = strPtr(string(outcome))
	}
	s.appendLog(ctx, event, domain.WebhookStatusProcessed, note)
	return outcome, nil
}

// apply performs steps 1-6 of the reconciliation algorithm.
func (s *ReconcilerImpl) apply(ctx context.Context, event *domain.ProviderEvent) (ports.ReconcileOutcome, error) {
	txn, err := s.txRepo.GetByReference(ctx, event.Reference)
	if err != nil {
		return ports.OutcomeIgnored, apperror.InternalError(fmt.Errorf("lookup transaction: %w", err))
	}
	if txn == nil {
		// Acknowledge unknown references: erroring here would make the
		// provider retry a delivery we can never apply.
		s.log.Warn().
			Str("provider", event.Provider).
			Str("reference", event.Reference).
			Msg("webhook for unknown reference ignored")
		return ports.OutcomeIgnored, nil
	}

	switch event.Status {
	case domain.TransactionStatusCompleted:
		return s.applyCompleted(ctx, event, txn)
	case domain.TransactionStatusFailed:
		return s.applyFailed(ctx, event, txn)
	default:
		// Vendor still pending: record the vendor id, no ledger action.
		if err := s.txRepo.TouchPending(ctx, event.Reference, event.ProviderTransactionID); err != nil {
			return ports.OutcomeNoop, apperror.InternalError(fmt.Errorf("touch pending: %w", err))
		}
		return ports.OutcomeNoop, nil
	}
}

// applyCompleted claims pending -> completed and credits the wallet for
// funding transactions. Spend transactions were debited at initiation.
func (s *ReconcilerImpl) applyCompleted(ctx context.Context, event *domain.ProviderEvent, txn *domain.Transaction) (ports.ReconcileOutcome, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return ports.OutcomeApplied, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	claimed, err := s.txRepo.CompletePending(ctx, dbTx, event.Reference, event.ProviderTransactionID, string(event.RawPayload))
	if err != nil {
		return ports.OutcomeApplied, apperror.InternalError(fmt.Errorf("complete pending: %w", err))
	}
	if !claimed {
		return ports.OutcomeDuplicate, nil
	}

	if txn.Type.IsFunding() {
		desc := fmt.Sprintf("Wallet funding via %s", event.Provider)
		if err := s.ledger.Credit(ctx, dbTx, txn.UserID, txn.Amount, txn.Reference, desc); err != nil {
			return ports.OutcomeApplied, apperror.InternalError(fmt.Errorf("credit wallet: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return ports.OutcomeApplied, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", txn.Reference).
		Str("type", string(txn.Type)).
		Int64("amount", txn.Amount).
		Str("provider", event.Provider).
		Msg("transaction completed")

	s.notify(txn, domain.TransactionStatusCompleted)
	return ports.OutcomeApplied, nil
}

// applyFailed claims pending -> failed and refunds the wallet for spend
// transactions, exactly once, under a derived reference.
func (s *ReconcilerImpl) applyFailed(ctx context.Context, event *domain.ProviderEvent, txn *domain.Transaction) (ports.ReconcileOutcome, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return ports.OutcomeApplied, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	reason := event.VendorStatus
	if reason == "" {
		reason = event.EventType
	}

	claimed, err := s.txRepo.FailPending(ctx, dbTx, event.Reference, reason, string(event.RawPayload))
	if err != nil {
		return ports.OutcomeApplied, apperror.InternalError(fmt.Errorf("fail pending: %w", err))
	}
	if !claimed {
		return ports.OutcomeDuplicate, nil
	}

	refunded := false
	if txn.Type.IsSpend() {
		refundRef := domain.RefundReference(txn.Reference)
		if event.Reversal {
			refundRef = domain.ReversalReference(txn.Reference)
		}
		desc := fmt.Sprintf("Refund for failed %s %s", txn.Type, txn.Reference)
		if err := s.ledger.Credit(ctx, dbTx, txn.UserID, txn.Amount, refundRef, desc); err != nil {
			return ports.OutcomeApplied, apperror.InternalError(fmt.Errorf("refund wallet: %w", err))
		}
		refunded = true
	}

	if err := dbTx.Commit(ctx); err != nil {
		return ports.OutcomeApplied, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if refunded {
		metrics.RefundsTotal.Inc()
	}

	s.log.Info().
		Str("reference", txn.Reference).
		Str("type", string(txn.Type)).
		Int64("amount", txn.Amount).
		Bool("refunded", refunded).
		Str("reason", reason).
		Msg("transaction failed")

	s.notify(txn, domain.TransactionStatusFailed)
	return ports.OutcomeApplied, nil
}

// notify fans out the outcome, best-effort. A nil dispatcher means
// notifications are disabled.
func (s *ReconcilerImpl) notify(txn *domain.Transaction, status domain.TransactionStatus) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(buildNotification(txn, status))
}

// buildNotification renders the user-facing signal for a terminal
// transition.
func buildNotification(txn *domain.Transaction, status domain.TransactionStatus) domain.Notification {
	naira := float64(txn.Amount) / 100

	if status == domain.TransactionStatusCompleted {
		if txn.Type.IsFunding() {
			return domain.Notification{
				UserID:    txn.UserID,
				Kind:      domain.NotificationWalletFunded,
				Title:     "Wallet funded",
				Body:      fmt.Sprintf("Your wallet has been credited with NGN %.2f.", naira),
				Reference: txn.Reference,
				Amount:    txn.Amount,
			}
		}
		return domain.Notification{
			UserID:    txn.UserID,
			Kind:      domain.NotificationTransactionCompleted,
			Title:     "Purchase successful",
			Body:      fmt.Sprintf("Your %s purchase of NGN %.2f for %s was delivered.", txn.Type, naira, txn.Metadata.Recipient()),
			Reference: txn.Reference,
			Amount:    txn.Amount,
		}
	}

	if txn.Type.IsSpend() {
		return domain.Notification{
			UserID:    txn.UserID,
			Kind:      domain.NotificationWalletRefunded,
			Title:     "Purchase failed, wallet refunded",
			Body:      fmt.Sprintf("Your %s purchase of NGN %.2f failed. NGN %.2f has been returned to your wallet.", txn.Type, naira, naira),
			Reference: txn.Reference,
			Amount:    txn.Amount,
		}
	}
	return domain.Notification{
		UserID:    txn.UserID,
		Kind:      domain.NotificationTransactionFailed,
		Title:     "Wallet funding failed",
		Body:      fmt.Sprintf("Your wallet funding of NGN %.2f was not completed.", naira),
		Reference: txn.Reference,
		Amount:    txn.Amount,
	}
}

// appendLog writes the webhook audit row. Failures here are logged and
// swallowed: the audit trail must never decide reconciliation outcomes.
func (s *ReconcilerImpl) appendLog(ctx context.Context, event *domain.ProviderEvent, status domain.WebhookProcessingStatus, note *string) {
	entry := &domain.WebhookLog{
		ID:        uuid.New(),
		Provider:  event.Provider,
		EventType: event.EventType,
		Reference: event.Reference,
		Status:    status,
		Error:     note,
		Payload:   event.RawPayload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.logRepo.Append(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("reference", event.Reference).Msg("failed to append webhook log")
	}
}

func strPtr(s string) *string {
	return &s
}
