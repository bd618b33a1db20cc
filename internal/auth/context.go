package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/collabhub/collabhub-backend/internal/auth/domain"
)

const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored on ctx, or the anonymous identity.
func IdentityFrom(ctx context.Context) domain.Identity {
	if id, ok := ctx.Value(identityKey{}).(domain.Identity); ok {
		return id
	}
	return domain.Anonymous()
}

// UserID extracts the caller's user id from the Gin context.
// This is set by middleware.Authenticate.
func UserID(c *gin.Context) string {
	if v := strings.TrimSpace(c.GetString(CtxUserID)); v != "" {
		return v
	}
	return IdentityFrom(c.Request.Context()).UserID
}

// CurrentIdentity is IdentityFrom for a Gin request.
func CurrentIdentity(c *gin.Context) domain.Identity {
	return IdentityFrom(c.Request.Context())
}

// SetIdentity stores id on both the request context and the Gin keys.
func SetIdentity(c *gin.Context, id domain.Identity) {
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
	c.Set(CtxUserID, id.UserID)
	if id.Email != "" {
		c.Set(CtxEmail, id.Email)
	}
}

// BearerToken extracts the Bearer token from an Authorization header value.
func BearerToken(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
