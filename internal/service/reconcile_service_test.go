package service

import (
	"context"
	"testing"
	"time"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReconciler(txRepo *fakeTxRepo, ledger *fakeLedger, logRepo *fakeWebhookLog, dedupe ports.EventDedupeStore, dispatcher ports.NotificationDispatcher) *ReconcilerImpl {
	return NewReconciler(txRepo, ledger, logRepo, dedupe, &fakeTransactor{}, dispatcher, logger.New("error", false))
}

func pendingTransaction(tt domain.TransactionType, amount int64) *domain.Transaction {
	meta := domain.Metadata{}
	switch tt {
	case domain.TransactionTypeAirtime:
		meta.Airtime = &domain.AirtimeMetadata{Network: "mtn", Phone: "08012345678"}
	case domain.TransactionTypeFunding:
		meta.Funding = &domain.FundingMetadata{Gateway: "paystack"}
	case domain.TransactionTypeTransfer:
		meta.Transfer = &domain.TransferMetadata{BankCode: "058", AccountNumber: "0123456789", AccountName: "Ada"}
	}
	return &domain.Transaction{
		ID:        uuid.New(),
		Reference: NewReference(tt),
		UserID:    uuid.New(),
		Type:      tt,
		Amount:    amount,
		Status:    domain.TransactionStatusPending,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
}

func completedEvent(txn *domain.Transaction, provider string) *domain.ProviderEvent {
	return &domain.ProviderEvent{
		Provider:     provider,
		EventType:    "charge.success",
		Reference:    txn.Reference,
		VendorStatus: "success",
		Status:       domain.TransactionStatusCompleted,
		RawPayload:   []byte(`{"status":"success"}`),
	}
}

func failedEvent(txn *domain.Transaction, provider string) *domain.ProviderEvent {
	return &domain.ProviderEvent{
		Provider:     provider,
		EventType:    "vend.update",
		Reference:    txn.Reference,
		VendorStatus: "failed",
		Status:       domain.TransactionStatusFailed,
		RawPayload:   []byte(`{"status":"failed"}`),
	}
}

func TestReconcile_FundingCompleted_CreditsWalletOnce(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}
	dispatcher := &fakeDispatcher{}

	txn := pendingTransaction(domain.TransactionTypeFunding, 500_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, nil, dispatcher)

	outcome, err := rec.Reconcile(context.Background(), completedEvent(txn, "paystack"))
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)

	// Wallet credited exactly once with the funding amount.
	assert.Equal(t, int64(500_000), ledger.balances[txn.UserID])
	require.Len(t, ledger.credits, 1)
	assert.Equal(t, txn.Reference, ledger.credits[0].Reference)

	// Transaction is terminal.
	stored, _ := txRepo.GetByReference(context.Background(), txn.Reference)
	assert.Equal(t, domain.TransactionStatusCompleted, stored.Status)
	assert.NotNil(t, stored.CompletedAt)

	// One notification, one audit row.
	assert.Equal(t, 1, dispatcher.count())
	assert.Len(t, logRepo.entries, 1)
	assert.Equal(t, domain.WebhookStatusProcessed, logRepo.entries[0].Status)
}

func TestReconcile_DuplicateDelivery_AppliesOnce(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}
	dispatcher := &fakeDispatcher{}

	txn := pendingTransaction(domain.TransactionTypeFunding, 200_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, nil, dispatcher)

	first, err := rec.Reconcile(context.Background(), completedEvent(txn, "paystack"))
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, first)

	second, err := rec.Reconcile(context.Background(), completedEvent(txn, "paystack"))
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeDuplicate, second)

	// Exactly one credit despite two deliveries.
	assert.Equal(t, int64(200_000), ledger.balances[txn.UserID])
	assert.Len(t, ledger.credits, 1)
	assert.Equal(t, 1, dispatcher.count())

	// Both deliveries audited.
	assert.Len(t, logRepo.entries, 2)
}

func TestReconcile_FailedSpend_RefundsExactlyOnce(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}
	dispatcher := &fakeDispatcher{}

	txn := pendingTransaction(domain.TransactionTypeAirtime, 100_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, nil, dispatcher)

	event := failedEvent(txn, "vtpass")
	outcome, err := rec.Reconcile(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)

	// Refund credited under the derived reference.
	refunds := ledger.creditsFor("REFUND-")
	require.Len(t, refunds, 1)
	assert.Equal(t, domain.RefundReference(txn.Reference), refunds[0].Reference)
	assert.Equal(t, int64(100_000), refunds[0].Amount)

	// Second delivery refunds nothing.
	outcome, err = rec.Reconcile(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeDuplicate, outcome)
	assert.Len(t, ledger.creditsFor("REFUND-"), 1)

	stored, _ := txRepo.GetByReference(context.Background(), txn.Reference)
	assert.Equal(t, domain.TransactionStatusFailed, stored.Status)
	assert.Equal(t, "failed", *stored.FailureReason)
}

func TestReconcile_Reversal_UsesReversalReference(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}

	txn := pendingTransaction(domain.TransactionTypeTransfer, 750_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, nil, nil)

	event := failedEvent(txn, "paystack")
	event.EventType = "transfer.reversed"
	event.VendorStatus = "reversed"
	event.Reversal = true

	outcome, err := rec.Reconcile(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)

	reversals := ledger.creditsFor("REVERSAL-")
	require.Len(t, reversals, 1)
	assert.Equal(t, domain.ReversalReference(txn.Reference), reversals[0].Reference)
}

func TestReconcile_FailedFunding_NoRefund(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}

	txn := pendingTransaction(domain.TransactionTypeFunding, 300_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, nil, nil)

	outcome, err := rec.Reconcile(context.Background(), failedEvent(txn, "paystack"))
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)

	// Funding was never debited, so a failure moves no money.
	assert.Empty(t, ledger.credits)
	assert.Equal(t, int64(0), ledger.balances[txn.UserID])
}

func TestReconcile_UnknownReference_Ignored(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}

	rec := newTestReconciler(txRepo, ledger, logRepo, nil, nil)

	event := &domain.ProviderEvent{
		Provider:     "paystack",
		EventType:    "charge.success",
		Reference:    "FND-0000000000000-deadbeef",
		VendorStatus: "success",
		Status:       domain.TransactionStatusCompleted,
	}

	outcome, err := rec.Reconcile(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeIgnored, outcome)
	assert.Empty(t, ledger.credits)

	// Ignored deliveries still land in the audit trail.
	require.Len(t, logRepo.entries, 1)
	assert.Equal(t, domain.WebhookStatusProcessed, logRepo.entries[0].Status)
}

func TestReconcile_VendorPending_Noop(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}

	txn := pendingTransaction(domain.TransactionTypeAirtime, 50_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, nil, nil)

	providerID := "VT-998877"
	event := &domain.ProviderEvent{
		Provider:              "vtpass",
		EventType:             "vend.update",
		Reference:             txn.Reference,
		VendorStatus:          "initiated",
		Status:                domain.TransactionStatusPending,
		ProviderTransactionID: &providerID,
	}

	outcome, err := rec.Reconcile(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeNoop, outcome)

	stored, _ := txRepo.GetByReference(context.Background(), txn.Reference)
	assert.Equal(t, domain.TransactionStatusPending, stored.Status)
	require.NotNil(t, stored.ProviderTransactionID)
	assert.Equal(t, "VT-998877", *stored.ProviderTransactionID)
}

func TestReconcile_DedupeStore_ShortCircuitsRedelivery(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}
	dedupe := newFakeDedupe()

	txn := pendingTransaction(domain.TransactionTypeFunding, 100_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, dedupe, nil)

	event := completedEvent(txn, "paystack")
	outcome, err := rec.Reconcile(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)

	outcome, err = rec.Reconcile(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeDuplicate, outcome)
	assert.Len(t, ledger.credits, 1)
}

func TestReconcile_DedupeStoreDown_StillProcesses(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}
	dedupe := newFakeDedupe()
	dedupe.err = errBoom

	txn := pendingTransaction(domain.TransactionTypeFunding, 100_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, dedupe, nil)

	outcome, err := rec.Reconcile(context.Background(), completedEvent(txn, "paystack"))
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)
	assert.Len(t, ledger.credits, 1)
}

func TestReconcile_ProcessingError_ReleasesClaimAndLogsFailed(t *testing.T) {
	txRepo := newFakeTxRepo()
	txRepo.completeErr = errBoom
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{}
	dedupe := newFakeDedupe()

	txn := pendingTransaction(domain.TransactionTypeFunding, 100_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, dedupe, nil)

	event := completedEvent(txn, "paystack")
	_, err := rec.Reconcile(context.Background(), event)
	require.Error(t, err)

	// Failed delivery audited as such.
	require.Len(t, logRepo.entries, 1)
	assert.Equal(t, domain.WebhookStatusFailed, logRepo.entries[0].Status)

	// Claim released: the provider retry reaches apply again and succeeds.
	txRepo.completeErr = nil
	outcome, err := rec.Reconcile(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)
	assert.Len(t, ledger.credits, 1)
}

func TestReconcile_AuditFailure_DoesNotFailReconciliation(t *testing.T) {
	txRepo := newFakeTxRepo()
	ledger := newFakeLedger()
	logRepo := &fakeWebhookLog{err: errBoom}

	txn := pendingTransaction(domain.TransactionTypeFunding, 100_000)
	txRepo.put(txn)

	rec := newTestReconciler(txRepo, ledger, logRepo, nil, nil)

	outcome, err := rec.Reconcile(context.Background(), completedEvent(txn, "paystack"))
	require.NoError(t, err)
	assert.Equal(t, ports.OutcomeApplied, outcome)
	assert.Len(t, ledger.credits, 1)
}
