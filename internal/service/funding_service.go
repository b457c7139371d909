package service

import (
	"context"
	"fmt"
	"time"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FundingServiceImpl implements ports.FundingService.
// Funding transactions are credited on confirmation: no money enters the
// wallet until the gateway webhook settles the pending row.
type FundingServiceImpl struct {
	txRepo     ports.TransactionRepository
	userRepo   ports.UserRepository
	transactor ports.DBTransactor
	gateway    ports.GatewayClient
	log        zerolog.Logger
}

// NewFundingService creates a new FundingServiceImpl.
func NewFundingService(
	txRepo ports.TransactionRepository,
	userRepo ports.UserRepository,
	transactor ports.DBTransactor,
	gateway ports.GatewayClient,
	log zerolog.Logger,
) *FundingServiceImpl {
	return &FundingServiceImpl{
		txRepo:     txRepo,
		userRepo:   userRepo,
		transactor: transactor,
		gateway:    gateway,
		log:        log,
	}
}

// InitiateFunding creates a pending wallet_funding transaction and opens
// a hosted checkout session for it.
func (s *FundingServiceImpl) InitiateFunding(ctx context.Context, req ports.FundingRequest) (*ports.FundingIntent, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Gateway == "" {
		req.Gateway = "paystack"
	}
	if req.Gateway != "paystack" {
		return nil, apperror.Validation(fmt.Sprintf("unsupported funding gateway: %s", req.Gateway))
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}

	reference := NewReference(domain.TransactionTypeFunding)

	checkout, err := s.gateway.InitializeFunding(ctx, ports.GatewayInitRequest{
		Reference: reference,
		Email:     user.Email,
		Amount:    req.Amount,
	})
	if err != nil {
		return nil, apperror.ErrGatewayUnavailable(fmt.Errorf("initialize funding: %w", err))
	}

	authURL := checkout.AuthorizationURL
	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:        uuid.New(),
		Reference: reference,
		UserID:    req.UserID,
		Type:      domain.TransactionTypeFunding,
		Amount:    req.Amount,
		Status:    domain.TransactionStatusPending,
		Metadata: domain.Metadata{
			Funding: &domain.FundingMetadata{
				Gateway:          req.Gateway,
				AuthorizationURL: &authURL,
			},
		},
		CreatedAt: now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create funding transaction: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("reference", reference).
		Str("user_id", req.UserID.String()).
		Int64("amount", req.Amount).
		Str("gateway", req.Gateway).
		Msg("wallet funding initiated")

	return &ports.FundingIntent{
		Reference:        reference,
		AuthorizationURL: checkout.AuthorizationURL,
	}, nil
}
