package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelsso/sentinel/errors"
)

func TestRegisterHashesPassword(t *testing.T) {
	e := newTestEngine(t)

	user, err := e.users.Register(context.Background(), "bob", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	stored, err := e.repo.GetUserByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "hunter2")
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.users.Register(context.Background(), "bob", "hunter2")
	require.NoError(t, err)

	_, err = e.users.Register(context.Background(), "bob", "other")
	assert.ErrorIs(t, err, errors.ErrDuplicateUser)
}

func TestVerifyCredentials(t *testing.T) {
	e := newTestEngine(t)

	created, err := e.users.Register(context.Background(), "bob", "hunter2")
	require.NoError(t, err)

	user, err := e.users.VerifyCredentials(context.Background(), "bob", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = e.users.VerifyCredentials(context.Background(), "bob", "wrong")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)

	// Unknown user reports the same error as a bad password.
	_, err = e.users.VerifyCredentials(context.Background(), "nobody", "hunter2")
	assert.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestClientServiceNeverReturnsSecrets(t *testing.T) {
	e := newTestEngine(t)

	created, err := e.clients.Register(context.Background(),
		"app-1", "top-secret", "App One", "https://one.example.com/cb", nil)
	require.NoError(t, err)
	assert.Empty(t, created.Secret)
	// Defaulted grant types cover both supported grants.
	assert.Len(t, created.GrantTypes, 2)

	got, err := e.clients.Get(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Empty(t, got.Secret)

	list, err := e.clients.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Secret)

	// The stored record still authenticates with the secret.
	_, err = e.repo.GetClientWithSecret(context.Background(), "app-1", "top-secret")
	assert.NoError(t, err)
}
