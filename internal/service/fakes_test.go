package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- No-op pgx.Tx + transactor ---

type fakeTransactor struct {
	beginErr error
}

func (t *fakeTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if t.beginErr != nil {
		return nil, t.beginErr
	}
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *noopTx) Conn() *pgx.Conn                                               { return nil }

// --- In-memory transaction repo with conditional claims ---

type fakeTxRepo struct {
	mu   sync.Mutex
	byRef map[string]*domain.Transaction

	completeErr error
	failErr     error
}

func newFakeTxRepo() *fakeTxRepo {
	return &fakeTxRepo{byRef: make(map[string]*domain.Transaction)}
}

func (r *fakeTxRepo) put(t *domain.Transaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.byRef[t.Reference] = &cp
}

func (r *fakeTxRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byRef[t.Reference]; ok {
		return apperror.ErrDuplicateReference()
	}
	cp := *t
	r.byRef[t.Reference] = &cp
	return nil
}

func (r *fakeTxRepo) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byRef[reference]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTxRepo) CompletePending(ctx context.Context, tx pgx.Tx, reference string, providerTxID *string, providerResponse string) (bool, error) {
	if r.completeErr != nil {
		return false, r.completeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byRef[reference]
	if !ok || t.Status != domain.TransactionStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	t.Status = domain.TransactionStatusCompleted
	t.CompletedAt = &now
	if providerTxID != nil {
		t.ProviderTransactionID = providerTxID
	}
	if providerResponse != "" {
		t.ProviderResponse = &providerResponse
	}
	return true, nil
}

func (r *fakeTxRepo) FailPending(ctx context.Context, tx pgx.Tx, reference string, reason string, providerResponse string) (bool, error) {
	if r.failErr != nil {
		return false, r.failErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byRef[reference]
	if !ok || t.Status != domain.TransactionStatusPending {
		return false, nil
	}
	now := time.Now().UTC()
	t.Status = domain.TransactionStatusFailed
	t.FailedAt = &now
	t.FailureReason = &reason
	if providerResponse != "" {
		t.ProviderResponse = &providerResponse
	}
	return true, nil
}

func (r *fakeTxRepo) TouchPending(ctx context.Context, reference string, providerTxID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byRef[reference]
	if ok && t.Status == domain.TransactionStatusPending && providerTxID != nil {
		t.ProviderTransactionID = providerTxID
	}
	return nil
}

func (r *fakeTxRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Transaction
	for _, t := range r.byRef {
		if t.UserID == params.UserID {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

// --- In-memory ledger ---

type ledgerEntry struct {
	UserID      uuid.UUID
	Amount      int64
	Reference   string
	Description string
}

type fakeLedger struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
	wallets  map[uuid.UUID]*domain.Wallet
	credits  []ledgerEntry
	debits   []ledgerEntry

	creditErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		balances: make(map[uuid.UUID]int64),
		wallets:  make(map[uuid.UUID]*domain.Wallet),
	}
}

func (l *fakeLedger) Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, reference, description string) error {
	if l.creditErr != nil {
		return l.creditErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.credits {
		if c.Reference == reference {
			return apperror.ErrDuplicateReference()
		}
	}
	l.balances[userID] += amount
	l.credits = append(l.credits, ledgerEntry{userID, amount, reference, description})
	return nil
}

func (l *fakeLedger) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, reference, description string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[userID] < amount {
		return apperror.ErrInsufficientBalance()
	}
	l.balances[userID] -= amount
	l.debits = append(l.debits, ledgerEntry{userID, amount, reference, description})
	return nil
}

func (l *fakeLedger) CreateWallet(ctx context.Context, w *domain.Wallet) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.wallets[w.UserID] = w
	return nil
}

func (l *fakeLedger) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.wallets[userID]
	if !ok {
		return nil, nil
	}
	cp := *w
	cp.Balance = l.balances[userID]
	return &cp, nil
}

func (l *fakeLedger) creditsFor(prefix string) []ledgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []ledgerEntry
	for _, c := range l.credits {
		if strings.HasPrefix(c.Reference, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// --- In-memory webhook log ---

type fakeWebhookLog struct {
	mu      sync.Mutex
	entries []domain.WebhookLog
	err     error
}

func (r *fakeWebhookLog) Append(ctx context.Context, l *domain.WebhookLog) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *l)
	return nil
}

func (r *fakeWebhookLog) ListByReference(ctx context.Context, reference string) ([]domain.WebhookLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WebhookLog
	for _, e := range r.entries {
		if e.Reference == reference {
			out = append(out, e)
		}
	}
	return out, nil
}

// --- In-memory dedupe store ---

type fakeDedupe struct {
	mu     sync.Mutex
	seen   map[string]bool
	err    error
}

func newFakeDedupe() *fakeDedupe {
	return &fakeDedupe{seen: make(map[string]bool)}
}

func (d *fakeDedupe) ClaimEvent(ctx context.Context, provider, eventID string, ttl time.Duration) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	key := provider + ":" + eventID
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}

func (d *fakeDedupe) ReleaseEvent(ctx context.Context, provider, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, provider+":"+eventID)
	return nil
}

// --- Recording dispatcher ---

type fakeDispatcher struct {
	mu    sync.Mutex
	sent  []domain.Notification
}

func (d *fakeDispatcher) Dispatch(n domain.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

// --- Fake VTU client ---

type fakeVTUClient struct {
	result *ports.VendResult
	err    error
	calls  int
}

func (c *fakeVTUClient) Vend(ctx context.Context, req ports.VendRequest) (*ports.VendResult, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

// --- Fake gateway client ---

type fakeGateway struct {
	checkout *ports.GatewayCheckout
	err      error
}

func (g *fakeGateway) InitializeFunding(ctx context.Context, req ports.GatewayInitRequest) (*ports.GatewayCheckout, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.checkout, nil
}

// --- In-memory user repo ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

var errBoom = errors.New("boom")
