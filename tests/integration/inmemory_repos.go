package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperror.ErrEmailExists()
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *inMemoryUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// --- In-Memory Ledger Repo ---

// inMemoryLedgerRepo mirrors the stored-procedure semantics: balances
// never go negative and every ledger reference is honored exactly once.
type inMemoryLedgerRepo struct {
	mu      sync.Mutex
	wallets map[uuid.UUID]*domain.Wallet
	usedRef map[string]bool
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{
		wallets: make(map[uuid.UUID]*domain.Wallet),
		usedRef: make(map[string]bool),
	}
}

func (r *inMemoryLedgerRepo) Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, reference, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usedRef[reference] {
		return apperror.ErrDuplicateReference()
	}
	w, ok := r.wallets[userID]
	if !ok {
		return apperror.ErrWalletNotFound()
	}
	w.Balance += amount
	w.UpdatedAt = time.Now().UTC()
	r.usedRef[reference] = true
	return nil
}

func (r *inMemoryLedgerRepo) Debit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int64, reference, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.usedRef[reference] {
		return apperror.ErrDuplicateReference()
	}
	w, ok := r.wallets[userID]
	if !ok {
		return apperror.ErrWalletNotFound()
	}
	if w.Balance < amount {
		return apperror.ErrInsufficientBalance()
	}
	w.Balance -= amount
	w.UpdatedAt = time.Now().UTC()
	r.usedRef[reference] = true
	return nil
}

func (r *inMemoryLedgerRepo) CreateWallet(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[w.UserID] = w
	return nil
}

func (r *inMemoryLedgerRepo) GetWallet(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return nil, nil
	}
	copied := *w
	return &copied, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction // keyed by reference
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{transactions: make(map[string]*domain.Transaction)}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.transactions[t.Reference]; exists {
		return apperror.ErrDuplicateReference()
	}
	copied := *t
	r.transactions[t.Reference] = &copied
	return nil
}

func (r *inMemoryTransactionRepo) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transactions[reference]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (r *inMemoryTransactionRepo) CompletePending(ctx context.Context, tx pgx.Tx, reference string, providerTxID *string, providerResponse string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[reference]
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

func (r *inMemoryTransactionRepo) FailPending(ctx context.Context, tx pgx.Tx, reference string, reason string, providerResponse string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[reference]
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

func (r *inMemoryTransactionRepo) TouchPending(ctx context.Context, reference string, providerTxID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.transactions[reference]
	if !ok || t.Status != domain.TransactionStatusPending {
		return nil
	}
	if providerTxID != nil {
		t.ProviderTransactionID = providerTxID
	}
	return nil
}

func (r *inMemoryTransactionRepo) List(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.transactions {
		if t.UserID != params.UserID {
			continue
		}
		if params.Status != nil && t.Status != *params.Status {
			continue
		}
		if params.Type != nil && t.Type != *params.Type {
			continue
		}
		if params.From != nil && t.CreatedAt.Unix() < *params.From {
			continue
		}
		if params.To != nil && t.CreatedAt.Unix() > *params.To {
			continue
		}
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	total := int64(len(result))

	// Simple pagination
	start := (params.Page - 1) * params.PageSize
	if start >= len(result) {
		return []domain.Transaction{}, total, nil
	}
	end := start + params.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

// --- In-Memory Webhook Log Repo ---

type inMemoryWebhookLogRepo struct {
	mu   sync.RWMutex
	logs []domain.WebhookLog
}

func newInMemoryWebhookLogRepo() *inMemoryWebhookLogRepo {
	return &inMemoryWebhookLogRepo{}
}

func (r *inMemoryWebhookLogRepo) Append(ctx context.Context, log *domain.WebhookLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *inMemoryWebhookLogRepo) ListByReference(ctx context.Context, reference string) ([]domain.WebhookLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.WebhookLog
	for _, l := range r.logs {
		if l.Reference == reference {
			result = append(result, l)
		}
	}
	return result, nil
}

// --- In-Memory Contact Repo ---

type inMemoryContactRepo struct {
	mu       sync.RWMutex
	contacts map[uuid.UUID]*domain.Contact
}

func newInMemoryContactRepo() *inMemoryContactRepo {
	return &inMemoryContactRepo{contacts: make(map[uuid.UUID]*domain.Contact)}
}

func (r *inMemoryContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[c.ID] = c
	return nil
}

func (r *inMemoryContactRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Contact
	for _, c := range r.contacts {
		if c.UserID == userID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *inMemoryContactRepo) Delete(ctx context.Context, userID, contactID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contacts[contactID]
	if !ok || c.UserID != userID {
		return apperror.ErrNotFound("contact")
	}
	delete(r.contacts, contactID)
	return nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
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
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// --- Stub VTU Client ---

// stubVTUClient answers every vend with a canned result.
type stubVTUClient struct {
	mu     sync.Mutex
	result ports.VendResult
	err    error
	calls  int
}

func (c *stubVTUClient) Vend(ctx context.Context, req ports.VendRequest) (*ports.VendResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	result := c.result
	return &result, nil
}

// --- Stub Gateway Client ---

type stubGatewayClient struct {
	err error
}

func (c *stubGatewayClient) InitializeFunding(ctx context.Context, req ports.GatewayInitRequest) (*ports.GatewayCheckout, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &ports.GatewayCheckout{
		AuthorizationURL: "https://checkout.paystack.com/" + req.Reference,
		AccessCode:       "access-" + req.Reference,
	}, nil
}
