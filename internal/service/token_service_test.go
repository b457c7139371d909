package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret-key", time.Hour, "topup-pro")
	userID := uuid.New()

	token, expiresAt, err := svc.Generate(userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret-key", -time.Minute, "topup-pro")

	token, _, err := svc.Generate(uuid.New())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	require.Error(t, err)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuing := NewTokenService("secret-a", time.Hour, "topup-pro")
	validating := NewTokenService("secret-b", time.Hour, "topup-pro")

	token, _, err := issuing.Generate(uuid.New())
	require.NoError(t, err)

	_, err = validating.Validate(token)
	require.Error(t, err)
}

func TestTokenService_RejectsWrongIssuer(t *testing.T) {
	issuing := NewTokenService("test-secret-key", time.Hour, "someone-else")
	validating := NewTokenService("test-secret-key", time.Hour, "topup-pro")

	token, _, err := issuing.Generate(uuid.New())
	require.NoError(t, err)

	_, err = validating.Validate(token)
	require.Error(t, err)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret-key", time.Hour, "topup-pro")

	_, err := svc.Validate("not.a.jwt")
	require.Error(t, err)

	_, err = svc.Validate("")
	require.Error(t, err)
}
