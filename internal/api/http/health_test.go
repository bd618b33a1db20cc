package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabhub/collabhub-backend/internal/projects/domain"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type namedPinger struct {
	pingFunc
	name string
}

func (n namedPinger) Backend() string { return n.name }

var (
	up       = pingFunc(func(context.Context) error { return nil })
	down     = pingFunc(func(context.Context) error { return errors.New("connection refused") })
	disabled = pingFunc(func(context.Context) error { return domain.ErrRemoteDisabled })
)

func checkHealth(t *testing.T, h *HealthHandler, path string) (int, HealthResponse) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h.RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	return rr.Code, response
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		local      Pinger
		remote     RemotePinger
		wantCode   int
		wantStatus string
		wantLocal  string
		wantRemote string
	}{
		{"all up", up, namedPinger{up, "postgrest"}, http.StatusOK, "healthy", "up", "up"},
		{"remote down", up, namedPinger{down, "postgres"}, http.StatusOK, "degraded", "up", "down"},
		{"remote disabled", up, namedPinger{disabled, "disabled"}, http.StatusOK, "healthy", "up", "disabled"},
		{"no remote", up, nil, http.StatusOK, "healthy", "up", "disabled"},
		{"local down", down, namedPinger{up, "postgrest"}, http.StatusServiceUnavailable, "unhealthy", "down", "up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := checkHealth(t, NewHealthHandler("test-service", "1.0.0", tt.local, tt.remote), "/health")
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantLocal, resp.Local)
			assert.Equal(t, tt.wantRemote, resp.Remote)
			assert.Equal(t, "test-service", resp.Service)
			assert.Equal(t, "1.0.0", resp.Version)
		})
	}
}

func TestHealthCheck_Healthz(t *testing.T) {
	code, resp := checkHealth(t, NewHealthHandler("svc", "2.0.0", up, nil), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
}
