// Package services provides business logic layer for the AuthBox service.
// This file implements authentication over the configured backend chain and
// password hashing using bcrypt for secure credential management.
package services

import (
	"context"

	"github.com/avissapr/authbox/internal/backends"
	"github.com/avissapr/authbox/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates credentials against the configured backend
// chain and manages password hashing.
//
// Dependencies:
//   - backends.Backend chain: identity-verification strategies, tried in
//     configuration order; the first backend returning an account wins
//   - bcrypt: Secure password hashing and verification
//
// Security Notes:
//   - Constant-time password comparison happens inside the backends
//   - Never stores or logs plaintext passwords
type AuthService struct {
	chain      []backends.Backend // Ordered authentication strategies
	bcryptCost int                // Cost factor for HashPassword
}

// NewAuthService creates an AuthService over the given backend chain.
//
// Parameters:
//   - chain: Backends in configuration order (see backends.Build)
//   - bcryptCost: bcrypt cost factor for new password hashes
func NewAuthService(chain []backends.Backend, bcryptCost int) *AuthService {
	return &AuthService{chain: chain, bcryptCost: bcryptCost}
}

// Authenticate resolves the presented identifier and secret to an account.
// Each backend in the chain is asked in order; the first account wins.
//
// Returns:
//   - *models.User: Matching account, or nil when no backend matched
//   - error: Infrastructure error from a backend; a credential miss across
//     the whole chain is (nil, nil), not an error
func (s *AuthService) Authenticate(ctx context.Context, identifier, secret string) (*models.User, error) {
	for _, backend := range s.chain {
		user, err := backend.Authenticate(ctx, identifier, secret)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}

// GetUser resolves a persisted account ID through the backend chain.
// Returns (nil, nil) when no backend knows the ID.
func (s *AuthService) GetUser(ctx context.Context, id int) (*models.User, error) {
	for _, backend := range s.chain {
		user, err := backend.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}

// HashPassword generates a bcrypt hash of the provided plaintext password.
// Used when creating new users or updating passwords.
//
// Bcrypt Properties:
//   - Includes random salt (prevents rainbow table attacks)
//   - Adaptive cost factor (adjustable difficulty)
//   - Output includes salt and cost (60 characters)
//
// Security Notes:
//   - Never compare passwords using == operator
//   - Always use bcrypt.CompareHashAndPassword for verification
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(hash), err
}
