package main

import (
	"testing"

	"github.com/portfolio/internal/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestOwnerHashIsAcceptedByCredentials(t *testing.T) {
	hash, err := ownerHash("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	creds, err := handler.NewOwnerCredentials("owner", "", hash)
	require.NoError(t, err)
	assert.True(t, creds.Enabled())
}

func TestRandomPassword(t *testing.T) {
	a, err := randomPassword()
	require.NoError(t, err)
	b, err := randomPassword()
	require.NoError(t, err)
	assert.Len(t, a, 20)
	assert.NotEqual(t, a, b)
}
