package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/treinwijzer/treinwijzer/internal/api/middleware"
)

func TestParseAccessMode(t *testing.T) {
	assert.Equal(t, middleware.AccessLocalhost, middleware.ParseAccessMode(""))
	assert.Equal(t, middleware.AccessLocalhost, middleware.ParseAccessMode("anything"))
	assert.Equal(t, middleware.AccessLocalhost, middleware.ParseAccessMode("localhost"))
	assert.Equal(t, middleware.AccessLAN, middleware.ParseAccessMode(" LAN "))
	assert.Equal(t, middleware.AccessOpen, middleware.ParseAccessMode("open"))
}

func TestAccessGate(t *testing.T) {
	cases := []struct {
		name       string
		mode       middleware.AccessMode
		remoteAddr string
		wantStatus int
	}{
		{"localhost allows loopback v4", middleware.AccessLocalhost, "127.0.0.1:51000", http.StatusOK},
		{"localhost allows loopback v6", middleware.AccessLocalhost, "[::1]:51000", http.StatusOK},
		{"localhost rejects lan peer", middleware.AccessLocalhost, "192.168.1.20:51000", http.StatusForbidden},
		{"localhost rejects public peer", middleware.AccessLocalhost, "203.0.113.9:51000", http.StatusForbidden},
		{"lan allows loopback", middleware.AccessLAN, "127.0.0.1:51000", http.StatusOK},
		{"lan allows rfc1918", middleware.AccessLAN, "10.0.0.5:51000", http.StatusOK},
		{"lan allows link local", middleware.AccessLAN, "169.254.10.1:51000", http.StatusOK},
		{"lan rejects public peer", middleware.AccessLAN, "203.0.113.9:51000", http.StatusForbidden},
		{"open allows public peer", middleware.AccessOpen, "203.0.113.9:51000", http.StatusOK},
		{"garbage peer rejected", middleware.AccessLocalhost, "not-an-address", http.StatusForbidden},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/query", nil)
			req.RemoteAddr = tc.remoteAddr
			rec := httptest.NewRecorder()

			middleware.AccessGate(tc.mode)(next).ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusForbidden {
				assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestAccessGateIgnoresForwardedHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/query", nil)
	req.RemoteAddr = "203.0.113.9:51000"
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	rec := httptest.NewRecorder()

	middleware.AccessGate(middleware.AccessLocalhost)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
