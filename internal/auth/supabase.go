package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/supabase-community/gotrue-go"

	"github.com/collabhub/collabhub-backend/config"
	"github.com/collabhub/collabhub-backend/internal/auth/domain"
)

// SupabaseVerifier asks Supabase Auth (GoTrue) who owns an access token.
// GoTrue calls carry no context; ctx is checked before each call.
type SupabaseVerifier struct {
	client gotrue.Client
}

// NewSupabaseVerifier wraps the Auth client of a supabase.Client.
func NewSupabaseVerifier(client gotrue.Client) *SupabaseVerifier {
	return &SupabaseVerifier{client: client}
}

func (v *SupabaseVerifier) Name() string { return config.AuthProviderSupabase }

func (v *SupabaseVerifier) Verify(ctx context.Context, r *http.Request) (*domain.Identity, error) {
	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := v.client.WithToken(token).GetUser()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	id := &domain.Identity{
		UserID:   resp.ID.String(),
		Email:    resp.Email,
		Provider: v.Name(),
	}
	id.DisplayName = metadataString(resp.UserMetadata, "full_name", "name", "user_name")
	id.AvatarURL = metadataString(resp.UserMetadata, "avatar_url", "picture")
	return id, nil
}

// Revoke logs the token's session out of Supabase Auth.
func (v *SupabaseVerifier) Revoke(ctx context.Context, r *http.Request) error {
	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return domain.ErrMissingToken
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return v.client.WithToken(token).Logout()
}

func metadataString(meta map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := meta[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
