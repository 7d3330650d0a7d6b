package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinwijzer/treinwijzer/internal/api/middleware"
)

func TestRequestIDMintsWhenAbsent(t *testing.T) {
	var seenInContext string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenInContext = middleware.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", nil))

	echoed := rec.Header().Get("X-Request-Id")
	require.True(t, strings.HasPrefix(echoed, "req_"))
	assert.Equal(t, echoed, seenInContext)
}

func TestRequestIDKeepsCallerSupplied(t *testing.T) {
	var seenInContext string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenInContext = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/query", nil)
	req.Header.Set("X-Request-Id", "client-chosen-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "client-chosen-id", seenInContext)
	assert.Equal(t, "client-chosen-id", rec.Header().Get("X-Request-Id"))
}

func TestGetRequestIDWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}

func TestRequestIDsAreUnique(t *testing.T) {
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get("X-Request-Id")
		require.NotEmpty(t, id)
		require.False(t, seen[id], "request ID %s issued twice", id)
		seen[id] = true
	}
}
