package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashService_HashAndVerify(t *testing.T) {
	svc := NewHashService()

	hash, err := svc.Hash("correct horse battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := svc.Verify("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashService_UniqueSalts(t *testing.T) {
	svc := NewHashService()

	h1, err := svc.Hash("same password")
	require.NoError(t, err)
	h2, err := svc.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashService_MalformedHash(t *testing.T) {
	svc := NewHashService()

	_, err := svc.Verify("anything", "$bcrypt$not-argon2")
	require.Error(t, err)

	_, err = svc.Verify("anything", "plain garbage")
	require.Error(t, err)
}
