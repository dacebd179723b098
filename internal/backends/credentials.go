package backends

import (
	"context"
	"errors"

	"github.com/avissapr/authbox/internal/models"
	"github.com/avissapr/authbox/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// userFinder is the slice of UserRepository the credentials backend needs.
// Narrowed to an interface so backend tests can stub account lookups.
type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int) (*models.User, error)
}

// CredentialsBackend is the default identity-verification strategy. It
// looks up the account by its login identifier and verifies the secret
// against the stored bcrypt hash. Inactive accounts never authenticate.
//
// This is the fallback strategy other backends delegate to.
type CredentialsBackend struct {
	users userFinder
}

// NewCredentialsBackend creates the default backend over the given user
// repository.
func NewCredentialsBackend(users *repository.UserRepository) *CredentialsBackend {
	return &CredentialsBackend{users: users}
}

// Authenticate verifies the identifier/secret pair.
//
// A lookup miss, a password mismatch, and an inactive account all produce
// (nil, nil): absence of a match is a normal result, not a fault. Only
// infrastructure errors (database failures) are returned as errors.
//
// Security Notes:
//   - bcrypt.CompareHashAndPassword is constant-time to prevent timing attacks
//   - The same (nil, nil) result covers "no such account" and "wrong
//     password" so callers cannot distinguish which users exist
func (b *CredentialsBackend) Authenticate(ctx context.Context, identifier, secret string) (*models.User, error) {
	user, err := b.users.FindByEmail(ctx, identifier)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(secret)); err != nil {
		return nil, nil
	}

	return user, nil
}

// GetUser returns the account with the given ID, or (nil, nil) if it no
// longer exists.
func (b *CredentialsBackend) GetUser(ctx context.Context, id int) (*models.User, error) {
	user, err := b.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
