package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/treinwijzer/treinwijzer/internal/api"
	"github.com/treinwijzer/treinwijzer/internal/api/middleware"
	"github.com/treinwijzer/treinwijzer/internal/gateway"
)

func newTestRouter(mode middleware.AccessMode) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Version:    "test",
		BuildTime:  "now",
		Logger:     zerolog.Nop(),
		AccessMode: mode,
		Provider:   "ns",
		Dispatcher: gateway.New(gateway.Config{Logger: zerolog.Nop()}),
	})
}

func routerGet(handler http.Handler, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRouterAdmitsLoopbackPeer(t *testing.T) {
	handler := newTestRouter(middleware.AccessLocalhost)

	rec := routerGet(handler, "127.0.0.1:52000", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterGateIgnoresForwardedHeaders(t *testing.T) {
	handler := newTestRouter(middleware.AccessLocalhost)

	// The gate must decide on the TCP peer through the full chain: a
	// public client claiming a loopback origin via the headers RealIP
	// trusts stays rejected.
	for _, header := range []string{"X-Real-IP", "X-Forwarded-For", "True-Client-IP"} {
		rec := routerGet(handler, "203.0.113.9:51000", map[string]string{header: "127.0.0.1"})
		assert.Equal(t, http.StatusForbidden, rec.Code, "header %s", header)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"), "header %s", header)
	}
}

func TestRouterOpenModeAdmitsPublicPeer(t *testing.T) {
	handler := newTestRouter(middleware.AccessOpen)

	rec := routerGet(handler, "203.0.113.9:51000", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
