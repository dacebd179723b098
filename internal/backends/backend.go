// Package backends implements pluggable authentication strategies.
//
// A Backend resolves presented credentials to an account. Backends are
// registered by name and selected by configuration (AUTH_BACKENDS); the
// auth service tries the configured chain in order and the first backend
// returning an account wins.
//
// Miss semantics: a credential that matches no account, a wrong password,
// or an inactive account is a normal (nil, nil) result, never an error.
// Errors are reserved for infrastructure faults such as a failing database.
package backends

import (
	"context"
	"errors"

	"github.com/avissapr/authbox/internal/models"
)

// Backend is an identity-verification strategy.
type Backend interface {
	// Authenticate resolves a presented identifier and secret to an
	// account. Returns (nil, nil) when the credentials match no active
	// account.
	Authenticate(ctx context.Context, identifier, secret string) (*models.User, error)

	// GetUser returns the account with the given persisted ID, or
	// (nil, nil) if it no longer exists.
	GetUser(ctx context.Context, id int) (*models.User, error)
}

// ErrUnknownBackend is returned by Build when a configured backend name was
// never registered.
var ErrUnknownBackend = errors.New("unknown authentication backend")
