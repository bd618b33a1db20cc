package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/collabhub/collabhub-backend/config"
	"github.com/collabhub/collabhub-backend/internal/auth/domain"
)

// HeaderVerifier trusts X-User-Id and friends without any verification.
// Use this ONLY for development/testing; config refuses it in production.
type HeaderVerifier struct{}

func NewHeaderVerifier() *HeaderVerifier { return &HeaderVerifier{} }

func (v *HeaderVerifier) Name() string { return config.AuthProviderHeader }

func (v *HeaderVerifier) Verify(ctx context.Context, r *http.Request) (*domain.Identity, error) {
	uid := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if uid == "" {
		return nil, domain.ErrMissingToken
	}
	return &domain.Identity{
		UserID:      uid,
		Email:       r.Header.Get("X-User-Email"),
		DisplayName: r.Header.Get("X-User-Name"),
		AvatarURL:   r.Header.Get("X-User-Photo"),
		Provider:    v.Name(),
	}, nil
}
