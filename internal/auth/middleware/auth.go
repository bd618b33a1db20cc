package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/auth"
	"github.com/collabhub/collabhub-backend/internal/auth/domain"
	"github.com/collabhub/collabhub-backend/internal/logging"
)

// Authenticate resolves the caller with v and stores the identity on the
// request context. Requests without credentials continue as anonymous;
// requests with a rejected credential are stopped with 401.
func Authenticate(v auth.Verifier, sessions *auth.Sessions, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := v.Verify(c.Request.Context(), c.Request)
		switch {
		case err == nil:
			auth.SetIdentity(c, *id)
			if sessions != nil {
				sessions.Touch(*id)
			}
		case errors.Is(err, domain.ErrMissingToken):
			auth.SetIdentity(c, domain.Anonymous())
		default:
			logging.FromContext(c.Request.Context(), log).
				With("provider", v.Name()).
				LogWarnf("authenticate", "rejected credential: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			return
		}

		c.Next()
	}
}

// RequireUser stops anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.CurrentIdentity(c).IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": domain.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}
