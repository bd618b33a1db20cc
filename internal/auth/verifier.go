package auth

import (
	"context"
	"net/http"

	"github.com/collabhub/collabhub-backend/internal/auth/domain"
)

// Verifier resolves the caller of a request. It returns
// domain.ErrMissingToken when the request carries no credential at all and
// domain.ErrInvalidToken (wrapped) when a credential was rejected.
type Verifier interface {
	Verify(ctx context.Context, r *http.Request) (*domain.Identity, error)
	Name() string
}

// Revoker is implemented by verifiers whose provider can end a session.
type Revoker interface {
	Revoke(ctx context.Context, r *http.Request) error
}
