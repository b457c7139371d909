package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"topup-pro/internal/core/domain"
	"topup-pro/internal/core/ports"
	"topup-pro/pkg/apperror"
	"topup-pro/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(userRepo *fakeUserRepo) *domain.User {
	u := &domain.User{
		ID:        uuid.New(),
		Email:     "ada@example.com",
		Phone:     "08012345678",
		FullName:  "Ada Obi",
		CreatedAt: time.Now().UTC(),
	}
	_ = userRepo.Create(context.Background(), u)
	return u
}

func TestInitiateFunding_CreatesPendingTransaction(t *testing.T) {
	txRepo := newFakeTxRepo()
	userRepo := newFakeUserRepo()
	user := seedUser(userRepo)

	gw := &fakeGateway{checkout: &ports.GatewayCheckout{
		AuthorizationURL: "https://checkout.paystack.com/abc123",
		AccessCode:       "abc123",
	}}
	svc := NewFundingService(txRepo, userRepo, &fakeTransactor{}, gw, logger.New("error", false))

	intent, err := svc.InitiateFunding(context.Background(), ports.FundingRequest{
		UserID: user.ID,
		Amount: 500_000,
	})
	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.True(t, strings.HasPrefix(intent.Reference, "FND-"))
	assert.Equal(t, "https://checkout.paystack.com/abc123", intent.AuthorizationURL)

	stored, err := txRepo.GetByReference(context.Background(), intent.Reference)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.TransactionStatusPending, stored.Status)
	assert.Equal(t, domain.TransactionTypeFunding, stored.Type)
	assert.Equal(t, int64(500_000), stored.Amount)
	require.NotNil(t, stored.Metadata.Funding)
	assert.Equal(t, "paystack", stored.Metadata.Funding.Gateway)
}

func TestInitiateFunding_GatewayDown_NoTransactionCreated(t *testing.T) {
	txRepo := newFakeTxRepo()
	userRepo := newFakeUserRepo()
	user := seedUser(userRepo)

	gw := &fakeGateway{err: errBoom}
	svc := NewFundingService(txRepo, userRepo, &fakeTransactor{}, gw, logger.New("error", false))

	_, err := svc.InitiateFunding(context.Background(), ports.FundingRequest{
		UserID: user.ID,
		Amount: 500_000,
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "SYS_002", appErr.Code)

	// A checkout that never opened must not leave a pending row behind.
	assert.Empty(t, txRepo.byRef)
}

func TestInitiateFunding_Validation(t *testing.T) {
	userRepo := newFakeUserRepo()
	user := seedUser(userRepo)
	svc := NewFundingService(newFakeTxRepo(), userRepo, &fakeTransactor{}, &fakeGateway{}, logger.New("error", false))

	t.Run("zero amount", func(t *testing.T) {
		_, err := svc.InitiateFunding(context.Background(), ports.FundingRequest{UserID: user.ID, Amount: 0})
		require.Error(t, err)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "WLT_002", appErr.Code)
	})

	t.Run("unsupported gateway", func(t *testing.T) {
		_, err := svc.InitiateFunding(context.Background(), ports.FundingRequest{
			UserID:  user.ID,
			Amount:  100_000,
			Gateway: "flutterwave",
		})
		require.Error(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.InitiateFunding(context.Background(), ports.FundingRequest{
			UserID: uuid.New(),
			Amount: 100_000,
		})
		require.Error(t, err)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "VAL_002", appErr.Code)
	})
}
