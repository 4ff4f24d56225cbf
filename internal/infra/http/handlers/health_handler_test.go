package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	refused := func(context.Context) error { return errors.New("connection refused") }

	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler("1.2.0", Check{"database", ok}, Check{"rabbitmq", ok})
		rec := httptest.NewRecorder()
		h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "1.2.0", resp.Version)
		assert.Equal(t, map[string]string{"database": "healthy", "rabbitmq": "healthy"}, resp.Dependencies)
	})

	t.Run("degraded", func(t *testing.T) {
		h := NewHealthHandler("1.2.0", Check{"database", refused}, Check{"rabbitmq", ok})
		rec := httptest.NewRecorder()
		h.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "unhealthy: connection refused", resp.Dependencies["database"])
		assert.Equal(t, "healthy", resp.Dependencies["rabbitmq"])
	})

	t.Run("head has no body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler("1.2.0", Check{"database", ok}).Handle(rec, httptest.NewRequest(http.MethodHead, "/api/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, rec.Body.Len())
	})

	t.Run("head reports degraded status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler("1.2.0", Check{"rabbitmq", refused}).Handle(rec, httptest.NewRequest(http.MethodHead, "/api/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
