package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuelpulse/internal/services"
)

type stubHealth struct {
	status services.HealthStatus
	ready  bool
}

func (s *stubHealth) Check(ctx context.Context) services.HealthStatus { return s.status }
func (s *stubHealth) Ready(ctx context.Context) bool                  { return s.ready }

func TestHealthHandler_HealthCheck(t *testing.T) {
	stub := &stubHealth{
		status: services.HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   "0.3.0",
		},
	}
	handler := NewHealthHandler(stub, testLogger())

	rec := doRequest(t, handler.Routes(), http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestHealthHandler_ReadinessCheck(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		handler := NewHealthHandler(&stubHealth{ready: true}, testLogger())
		rec := doRequest(t, handler.Routes(), http.MethodGet, "/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		handler := NewHealthHandler(&stubHealth{ready: false}, testLogger())
		rec := doRequest(t, handler.Routes(), http.MethodGet, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not_ready", decodeBody(t, rec)["status"])
	})
}

func TestHealthHandler_LivenessCheck(t *testing.T) {
	handler := NewHealthHandler(&stubHealth{}, testLogger())
	rec := doRequest(t, handler.Routes(), http.MethodGet, "/live")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", decodeBody(t, rec)["status"])
}

func TestHealthHandler_Version(t *testing.T) {
	handler := NewHealthHandler(&stubHealth{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	handler.Version(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["version"])
	assert.Equal(t, "v1", body["api_version"])
}
