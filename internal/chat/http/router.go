package http

import (
	"github.com/gin-gonic/gin"

	"github.com/collabhub/collabhub-backend/internal/auth/middleware"
)

// Register attaches chat and presence routes to the API group. Every route
// requires a signed-in user; write runs before mutating routes.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	chats := rg.Group("/chats", middleware.RequireUser())
	chats.GET("", h.listChats)
	chats.POST("", chain(write, h.createChat)...)
	chats.GET("/:id/messages", h.history)
	chats.POST("/:id/messages", chain(write, h.sendMessage)...)
	chats.POST("/:id/read", h.markAsRead)
	chats.POST("/:id/messages/:msg_id/reactions", chain(write, h.toggleReaction)...)
	chats.GET("/:id/stream", h.stream)

	rg.GET("/presence", middleware.RequireUser(), h.online)
}

func chain(pre []gin.HandlerFunc, rest ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+len(rest))
	out = append(out, pre...)
	return append(out, rest...)
}
