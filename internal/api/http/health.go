package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Service       string    `json:"service"`
	Version       string    `json:"version"`
	Local         string    `json:"local"`
	Remote        string    `json:"remote"`
	RemoteBackend string    `json:"remote_backend,omitempty"`
}

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RemotePinger also names the remote backend in use.
type RemotePinger interface {
	Pinger
	Backend() string
}

type HealthHandler struct {
	serviceName string
	version     string
	local       Pinger
	remote      RemotePinger
}

func NewHealthHandler(serviceName, version string, local Pinger, remote RemotePinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		local:       local,
		remote:      remote,
	}
}

// HealthCheck reports 503 only when the local store is down; the remote
// store is best effort and never makes the service unhealthy.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Local:     probe(pingCtx, h.local),
		Remote:    "disabled",
	}
	if h.remote != nil {
		resp.RemoteBackend = h.remote.Backend()
		resp.Remote = probe(pingCtx, h.remote)
	}

	status := http.StatusOK
	if resp.Local == "down" {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	} else if resp.Remote == "down" {
		resp.Status = "degraded"
	}

	c.JSON(status, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	err := p.Ping(ctx)
	switch {
	case err == nil:
		return "up"
	case errors.Is(err, domain.ErrRemoteDisabled):
		return "disabled"
	default:
		return "down"
	}
}
