package http

import "github.com/gin-gonic/gin"

// Register expects authentication middleware to run first.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.POST("/signout", h.SignOut)
}
