package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	httpapi "github.com/collabhub/collabhub-backend/internal/api/http"
	"github.com/collabhub/collabhub-backend/internal/api/http/middleware"
	"github.com/collabhub/collabhub-backend/internal/api/http/routes"
)

type RouterDeps struct {
	ServiceName  string
	Version      string
	AllowOrigins []string
	Log          *logrus.Logger
	Local        httpapi.Pinger
	Remote       httpapi.RemotePinger
	V1           routes.V1Deps
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Local, dep.Remote)
	healthHandler.RegisterRoutes(r)

	if dep.V1.Log == nil {
		dep.V1.Log = dep.Log
	}
	routes.RegisterV1(r, dep.V1)

	return r
}
