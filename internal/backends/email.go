package backends

import (
	"context"

	"github.com/avissapr/authbox/internal/models"
)

// EmailBackend is an extension point for email-specific authentication.
//
// It currently performs no work of its own: both calls forward verbatim to
// the fallback backend, so installing it changes nothing observable. The
// name anticipates email-specific lookup rules (case folding, alias
// resolution) that have not been implemented; until then the delegation
// contract is the whole behavior.
type EmailBackend struct {
	fallback Backend
}

// NewEmailBackend wraps the given fallback strategy.
func NewEmailBackend(fallback Backend) *EmailBackend {
	return &EmailBackend{fallback: fallback}
}

// Authenticate forwards to the fallback strategy unchanged.
func (b *EmailBackend) Authenticate(ctx context.Context, identifier, secret string) (*models.User, error) {
	return b.fallback.Authenticate(ctx, identifier, secret)
}

// GetUser forwards to the fallback strategy unchanged.
func (b *EmailBackend) GetUser(ctx context.Context, id int) (*models.User, error) {
	return b.fallback.GetUser(ctx, id)
}
