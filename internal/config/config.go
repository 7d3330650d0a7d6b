// Package config loads the service configuration from the environment.
package config

import (
	"os"
	"strings"
	"time"
)

// Config holds the full service configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// Environment is the deployment environment name.
	Environment string

	// BaseURLs are the upstream API base URLs, tried in order.
	BaseURLs []string

	// APIKeyEnv names the env var holding the upstream subscription key.
	// The key itself is read per call so rotation needs no restart.
	APIKeyEnv string

	// UpstreamTimeout bounds one upstream HTTP attempt.
	UpstreamTimeout time.Duration

	// CacheTTLCeiling caps how long any result is served from cache.
	CacheTTLCeiling time.Duration

	// AccessMode is the peer-address gate: localhost, lan, or open.
	AccessMode string

	// OTLPEndpoint and TelemetryEnabled configure OpenTelemetry export.
	OTLPEndpoint     string
	TelemetryEnabled bool
}

// FromEnv builds a Config from environment variables, with defaults
// suitable for local use.
func FromEnv() Config {
	return Config{
		Port:             envOr("APP_PORT", "8080"),
		Environment:      envOr("APP_ENV", "development"),
		BaseURLs:         splitList(os.Getenv("NS_API_BASE_URLS")),
		APIKeyEnv:        envOr("NS_API_KEY_ENV", "NS_API_KEY"),
		UpstreamTimeout:  durationOr("UPSTREAM_TIMEOUT", 10*time.Second),
		CacheTTLCeiling:  durationOr("CACHE_TTL_CEILING", 5*time.Minute),
		AccessMode:       envOr("ACCESS_MODE", "localhost"),
		OTLPEndpoint:     envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: os.Getenv("OTEL_ENABLED") == "true",
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
