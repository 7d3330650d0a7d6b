package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinwijzer/treinwijzer/internal/api/middleware"
)

func newMetricsHandler(t *testing.T, inner http.HandlerFunc) http.Handler {
	t.Helper()
	metrics, err := middleware.NewMetrics()
	require.NoError(t, err)
	return metrics.Middleware()(inner)
}

func TestMetricsMiddlewarePassesResponseThrough(t *testing.T) {
	handler := newMetricsHandler(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMetricsMiddlewareErrorStatuses(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusBadGateway} {
		handler := newMetricsHandler(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", http.NoBody))
		assert.Equal(t, status, rec.Code)
	}
}

func TestMetricsMiddlewareImplicitStatus(t *testing.T) {
	// A handler that never calls WriteHeader still records 200.
	handler := newMetricsHandler(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("response"))
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
}
