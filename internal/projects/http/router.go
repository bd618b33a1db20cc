package http

import (
	"github.com/gin-gonic/gin"

	"github.com/collabhub/collabhub-backend/internal/auth/middleware"
)

// Register attaches project routes to the given router group. write runs
// before every mutating route (rate limiting in production).
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/categories", h.categories)
	rg.GET("/:id", h.get)

	rg.POST("", chain(write, h.save)...)
	rg.POST("/:id/like", chain(write, middleware.RequireUser(), h.like)...)
	rg.POST("/:id/bookmark", chain(write, middleware.RequireUser(), h.bookmark)...)
}

func chain(pre []gin.HandlerFunc, rest ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(pre)+len(rest))
	out = append(out, pre...)
	return append(out, rest...)
}
