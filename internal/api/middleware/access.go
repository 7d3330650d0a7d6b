package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/treinwijzer/treinwijzer/internal/api/models"
)

// AccessMode restricts who may reach the API, decided on the TCP peer
// address (not forwarded headers, which the peer controls).
type AccessMode string

const (
	// AccessLocalhost admits loopback peers only. This is the default.
	AccessLocalhost AccessMode = "localhost"

	// AccessLAN admits loopback, RFC1918, link-local and unique-local peers.
	AccessLAN AccessMode = "lan"

	// AccessOpen admits everyone.
	AccessOpen AccessMode = "open"
)

// ParseAccessMode maps a config string to an AccessMode, defaulting to
// localhost for anything unrecognized.
func ParseAccessMode(s string) AccessMode {
	switch AccessMode(strings.ToLower(strings.TrimSpace(s))) {
	case AccessLAN:
		return AccessLAN
	case AccessOpen:
		return AccessOpen
	}
	return AccessLocalhost
}

// AccessGate returns a middleware rejecting peers outside the configured
// access mode with a 403 problem.
func AccessGate(mode AccessMode) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !peerAllowed(mode, r.RemoteAddr) {
				traceID := GetRequestID(r.Context())
				problem := models.NewForbidden(traceID, "access restricted to "+string(mode)+" clients")
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func peerAllowed(mode AccessMode, remoteAddr string) bool {
	if mode == AccessOpen {
		return true
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	if ip.IsLoopback() {
		return true
	}
	if mode == AccessLAN {
		return ip.IsPrivate() || ip.IsLinkLocalUnicast()
	}
	return false
}
