package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collabhub/collabhub-backend/internal/api/http/middleware"
	"github.com/collabhub/collabhub-backend/internal/auth"
	authhttp "github.com/collabhub/collabhub-backend/internal/auth/http"
	authmw "github.com/collabhub/collabhub-backend/internal/auth/middleware"
	chathttp "github.com/collabhub/collabhub-backend/internal/chat/http"
	projecthttp "github.com/collabhub/collabhub-backend/internal/projects/http"
	uploadhttp "github.com/collabhub/collabhub-backend/internal/uploads/http"
)

type V1Deps struct {
	Verifier    auth.Verifier
	Sessions    *auth.Sessions
	RateLimiter *middleware.RateLimiter
	Log         *logrus.Logger

	Auth     *authhttp.Handler
	Projects *projecthttp.Handler
	Chats    *chathttp.Handler
	Uploads  *uploadhttp.Handler
}

// RegisterV1 mounts every /api/v1 route behind authentication. Handlers left
// nil are skipped.
func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	api.Use(authmw.Authenticate(dep.Verifier, dep.Sessions, dep.Log))

	var write []gin.HandlerFunc
	if dep.RateLimiter != nil {
		write = append(write, dep.RateLimiter.Middleware())
	}

	if dep.Auth != nil {
		dep.Auth.Register(api.Group("/auth"))
	}
	if dep.Projects != nil {
		dep.Projects.Register(api.Group("/projects"), write...)
	}
	if dep.Chats != nil {
		dep.Chats.Register(api, write...)
	}
	if dep.Uploads != nil {
		dep.Uploads.Register(api.Group("/uploads"), write...)
	}
}
