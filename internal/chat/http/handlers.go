package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/collabhub/collabhub-backend/internal/auth"
	"github.com/collabhub/collabhub-backend/internal/chat/domain"
	"github.com/collabhub/collabhub-backend/internal/chat/service"
	"github.com/collabhub/collabhub-backend/internal/logging"
)

func (h *Handler) listChats(c *gin.Context) {
	chats, err := h.svc.ListChats(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.fail(c, "list_chats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "chats": chats})
}

func (h *Handler) createChat(c *gin.Context) {
	var in domain.CreateChatInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	chat, created, err := h.svc.CreateChat(c.Request.Context(), auth.CurrentIdentity(c), in)
	if err != nil {
		h.fail(c, "create_chat", err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"ok": true, "chat": chat, "created": created})
}

func (h *Handler) history(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	msgs, err := h.svc.History(c.Request.Context(), c.Param("id"), auth.UserID(c), limit)
	if err != nil {
		h.fail(c, "chat_history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": msgs})
}

func (h *Handler) sendMessage(c *gin.Context) {
	var in domain.SendMessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), c.Param("id"), auth.CurrentIdentity(c), in)
	if err != nil {
		h.fail(c, "send_message", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": msg})
}

func (h *Handler) markAsRead(c *gin.Context) {
	if err := h.svc.MarkAsRead(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		h.fail(c, "mark_as_read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type reactionReq struct {
	Emoji string `json:"emoji"`
}

func (h *Handler) toggleReaction(c *gin.Context) {
	var req reactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	msg, on, err := h.svc.ToggleReaction(c.Request.Context(), c.Param("id"), c.Param("msg_id"), auth.UserID(c), req.Emoji)
	if err != nil {
		h.fail(c, "toggle_reaction", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "reacted": on, "message": msg})
}

func (h *Handler) online(c *gin.Context) {
	if h.presence == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "online": []string{}})
		return
	}
	ids, err := h.presence.Online(c.Request.Context())
	if err != nil {
		h.fail(c, "presence", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "online": ids})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrChatNotFound), errors.Is(err, domain.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "access denied"})
	case service.IsClientError(err):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.FromContext(c.Request.Context(), h.log).LogError(op, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
