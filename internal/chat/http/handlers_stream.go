package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/collabhub/collabhub-backend/internal/auth"
)

// stream pushes a chat's events to the client using Server-Sent Events
func (h *Handler) stream(c *gin.Context) {
	chatID := c.Param("id")
	userID := auth.UserID(c)

	chat, err := h.svc.GetChat(c.Request.Context(), chatID, userID)
	if err != nil {
		h.fail(c, "chat_stream", err)
		return
	}

	ctx := c.Request.Context()
	events, closeFn, err := h.svc.Stream(ctx, chatID, userID)
	if err != nil {
		h.fail(c, "chat_stream", err)
		return
	}
	defer closeFn()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering
	c.Status(http.StatusOK)

	initial, _ := json.Marshal(gin.H{"chat": chat})
	fmt.Fprintf(c.Writer, "event: initial\ndata: %s\n\n", initial)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case evt, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", evt.Type, data)
			flusher.Flush()
		}
	}
}
