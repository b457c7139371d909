package ports

import (
	"context"
	"net/http"
	"time"

	"topup-pro/internal/core/domain"

	"github.com/google/uuid"
)

// ProviderAdapter translates one vendor's webhook requests into
// normalized events. VerifySignature must be called on the exact raw
// bytes before ParseEvent; neither touches the transaction store.
type ProviderAdapter interface {
	Name() string
	VerifySignature(body []byte, header http.Header) error
	ParseEvent(body []byte) (*domain.ProviderEvent, error)
}

// ReconcileOutcome says what a delivery did to the transaction.
type ReconcileOutcome string

const (
	// OutcomeApplied: the pending transition was claimed and any ledger
	// movement committed.
	OutcomeApplied ReconcileOutcome = "applied"
	// OutcomeDuplicate: the transaction was already terminal; nothing moved.
	OutcomeDuplicate ReconcileOutcome = "duplicate"
	// OutcomeIgnored: no transaction matches the reference.
	OutcomeIgnored ReconcileOutcome = "ignored"
	// OutcomeNoop: vendor still reports pending; timestamps only.
	OutcomeNoop ReconcileOutcome = "noop"
)

// Reconciler applies exactly one state transition per normalized event
// and keeps the wallet ledger consistent with transaction state.
type Reconciler interface {
	Reconcile(ctx context.Context, event *domain.ProviderEvent) (ReconcileOutcome, error)
}

// Notifier is one delivery channel (email, SMS, push, realtime).
type Notifier interface {
	Name() string
	Send(ctx context.Context, n domain.Notification) error
}

// NotificationDispatcher fans a notification out to every channel,
// best-effort. It never returns an error: channel failures are logged
// and counted, nothing more.
type NotificationDispatcher interface {
	Dispatch(n domain.Notification)
}

// EventDedupeStore is the best-effort fast path that claims a webhook
// delivery before processing. Correctness never depends on it; the
// conditional transition in the transaction store is the authority.
type EventDedupeStore interface {
	// ClaimEvent returns true if this delivery is first-seen.
	ClaimEvent(ctx context.Context, provider, eventID string, ttl time.Duration) (bool, error)
	// ReleaseEvent drops a claim so a failed delivery can be retried.
	ReleaseEvent(ctx context.Context, provider, eventID string) error
}

// GatewayClient initializes hosted checkout sessions with a payment
// gateway for wallet funding.
type GatewayClient interface {
	InitializeFunding(ctx context.Context, req GatewayInitRequest) (*GatewayCheckout, error)
}

// GatewayInitRequest holds the inputs for a hosted checkout session.
type GatewayInitRequest struct {
	Reference string
	Email     string
	Amount    int64 // In kobo
}

// GatewayCheckout is the gateway's answer to an initialization call.
type GatewayCheckout struct {
	AuthorizationURL string
	AccessCode       string
}

// VTUClient submits vend requests to a VTU provider.
type VTUClient interface {
	Vend(ctx context.Context, req VendRequest) (*VendResult, error)
}

// VendRequest describes one airtime/data/cable/electricity vend.
type VendRequest struct {
	Provider  string // vtpass, baxi, clubkonnect
	Reference string
	Type      domain.TransactionType
	Amount    int64 // In kobo
	Metadata  domain.Metadata
}

// VendResult is the provider's synchronous answer. Delivered is rare;
// most providers answer accepted and confirm via webhook.
type VendResult struct {
	Accepted              bool
	Delivered             bool
	ProviderTransactionID *string
	FailureReason         string
}

// --- Service Ports (Business Logic) ---

// PurchaseService debits the wallet and submits a vend.
type PurchaseService interface {
	Purchase(ctx context.Context, req PurchaseRequest) (*domain.Transaction, error)
}

// PurchaseRequest holds validated input for a spend transaction.
type PurchaseRequest struct {
	UserID   uuid.UUID
	Type     domain.TransactionType
	Amount   int64 // In kobo
	Provider string
	Metadata domain.Metadata
}

// FundingService creates pending funding transactions; the wallet is
// credited only when the gateway webhook confirms.
type FundingService interface {
	InitiateFunding(ctx context.Context, req FundingRequest) (*FundingIntent, error)
}

// FundingRequest holds validated input for wallet funding.
type FundingRequest struct {
	UserID  uuid.UUID
	Amount  int64 // In kobo
	Gateway string
}

// FundingIntent is returned to the client to complete checkout.
type FundingIntent struct {
	Reference        string
	AuthorizationURL string
}

// ReportingService serves wallet balance and transaction history reads.
type ReportingService interface {
	GetWalletBalance(ctx context.Context, userID uuid.UUID) (int64, string, error) // balance, currency, error
	ListTransactions(ctx context.Context, params TransactionListParams) ([]domain.Transaction, int64, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Email    string
	Phone    string
	FullName string
	Password string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
}
