// Package services_test provides unit tests for the service layer.
// Auth service tests verify the backend chain semantics: first match wins,
// a miss across the whole chain is not an error, and infrastructure errors
// stop the chain.
package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/avissapr/authbox/internal/backends"
	"github.com/avissapr/authbox/internal/models"
	"github.com/avissapr/authbox/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeBackend is a scripted Backend for chain tests.
type fakeBackend struct {
	user  *models.User
	err   error
	calls int
}

func (f *fakeBackend) Authenticate(ctx context.Context, identifier, secret string) (*models.User, error) {
	f.calls++
	return f.user, f.err
}

func (f *fakeBackend) GetUser(ctx context.Context, id int) (*models.User, error) {
	f.calls++
	return f.user, f.err
}

// TestAuthService_Authenticate verifies chain traversal order and miss
// semantics.
func TestAuthService_Authenticate(t *testing.T) {
	alice := &models.User{ID: 1, Email: "alice@user.com"}

	t.Run("first match wins", func(t *testing.T) {
		first := &fakeBackend{user: alice}
		second := &fakeBackend{}

		svc := services.NewAuthService([]backends.Backend{first, second}, bcrypt.MinCost)
		user, err := svc.Authenticate(context.Background(), "alice@user.com", "pw")

		assert.NoError(t, err)
		assert.Equal(t, alice, user)
		assert.Equal(t, 1, first.calls)
		assert.Zero(t, second.calls, "Later backends must not run after a match")
	})

	t.Run("miss falls through the chain", func(t *testing.T) {
		first := &fakeBackend{}
		second := &fakeBackend{user: alice}

		svc := services.NewAuthService([]backends.Backend{first, second}, bcrypt.MinCost)
		user, err := svc.Authenticate(context.Background(), "alice@user.com", "pw")

		assert.NoError(t, err)
		assert.Equal(t, alice, user)
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 1, second.calls)
	})

	t.Run("full miss is nil, nil", func(t *testing.T) {
		svc := services.NewAuthService([]backends.Backend{&fakeBackend{}, &fakeBackend{}}, bcrypt.MinCost)
		user, err := svc.Authenticate(context.Background(), "nobody@user.com", "pw")

		assert.NoError(t, err, "A credential miss is a normal outcome")
		assert.Nil(t, user)
	})

	t.Run("infrastructure error stops the chain", func(t *testing.T) {
		boom := errors.New("connection refused")
		first := &fakeBackend{err: boom}
		second := &fakeBackend{user: alice}

		svc := services.NewAuthService([]backends.Backend{first, second}, bcrypt.MinCost)
		user, err := svc.Authenticate(context.Background(), "alice@user.com", "pw")

		assert.ErrorIs(t, err, boom)
		assert.Nil(t, user)
		assert.Zero(t, second.calls)
	})

	t.Run("empty chain always misses", func(t *testing.T) {
		svc := services.NewAuthService(nil, bcrypt.MinCost)
		user, err := svc.Authenticate(context.Background(), "alice@user.com", "pw")

		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

// TestAuthService_GetUser verifies ID resolution through the chain.
func TestAuthService_GetUser(t *testing.T) {
	alice := &models.User{ID: 1, Email: "alice@user.com"}

	t.Run("resolved", func(t *testing.T) {
		svc := services.NewAuthService([]backends.Backend{&fakeBackend{user: alice}}, bcrypt.MinCost)
		user, err := svc.GetUser(context.Background(), 1)

		assert.NoError(t, err)
		assert.Equal(t, alice, user)
	})

	t.Run("unknown id", func(t *testing.T) {
		svc := services.NewAuthService([]backends.Backend{&fakeBackend{}}, bcrypt.MinCost)
		user, err := svc.GetUser(context.Background(), 99)

		assert.NoError(t, err)
		assert.Nil(t, user)
	})
}

// TestAuthService_HashPassword verifies hash generation round-trips with
// bcrypt verification.
func TestAuthService_HashPassword(t *testing.T) {
	svc := services.NewAuthService(nil, bcrypt.MinCost)

	hash, err := svc.HashPassword("s3cret-pw")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pw", hash, "Plaintext must never be stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret-pw")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong-pw")))
}
