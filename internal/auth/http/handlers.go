package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collabhub/collabhub-backend/internal/auth"
	"github.com/collabhub/collabhub-backend/internal/logging"
)

// Me returns the identity resolved for the current request
func (h *Handler) Me(c *gin.Context) {
	id := auth.CurrentIdentity(c)
	if id.IsAnonymous() {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "user": id, "name": id.Name()})
}

// SignOut ends the caller's session and notifies session subscribers.
// Provider-side revocation is best effort.
func (h *Handler) SignOut(c *gin.Context) {
	id := auth.CurrentIdentity(c)
	if id.IsAnonymous() {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}

	if revoker, ok := h.verifier.(auth.Revoker); ok {
		if err := revoker.Revoke(c.Request.Context(), c.Request); err != nil {
			logging.FromContext(c.Request.Context(), h.log).
				With("user_id", id.UserID).
				LogWarnf("sign_out", "provider revoke failed: %v", err)
		}
	}

	hadSession := h.sessions.SignOut(id.UserID)
	c.JSON(http.StatusOK, gin.H{"ok": true, "had_session": hadSession})
}
