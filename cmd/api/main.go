// Package main provides the entrypoint for the Treinwijzer gateway server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/treinwijzer/treinwijzer/internal/api"
	"github.com/treinwijzer/treinwijzer/internal/api/middleware"
	"github.com/treinwijzer/treinwijzer/internal/cache"
	"github.com/treinwijzer/treinwijzer/internal/config"
	"github.com/treinwijzer/treinwijzer/internal/gateway"
	"github.com/treinwijzer/treinwijzer/internal/provider/ns"
	"github.com/treinwijzer/treinwijzer/internal/provider/resilience"
	"github.com/treinwijzer/treinwijzer/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "treinwijzer-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Treinwijzer gateway")

	cfg := config.FromEnv()

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TelemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.TelemetryEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	queryMetrics, err := telemetry.NewQueryMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize gateway metrics")
		os.Exit(1)
	}

	// Upstream client with a circuit-broken transport
	transportCfg := resilience.DefaultClientConfig(ns.ProviderName)
	transportCfg.Timeout = cfg.UpstreamTimeout
	client := ns.NewClient(ns.ClientConfig{
		BaseURLs:   cfg.BaseURLs,
		APIKeyEnv:  cfg.APIKeyEnv,
		HTTPClient: resilience.NewClient(transportCfg),
		Logger:     log,
	})

	if os.Getenv(cfg.APIKeyEnv) == "" {
		log.Warn().
			Str("env", cfg.APIKeyEnv).
			Msg("upstream subscription key not set - queries will fail until configured")
	}

	dispatcher := gateway.New(gateway.Config{
		Client:             client,
		Store:              cache.NewMemoryStore(),
		Logger:             log,
		Metrics:            queryMetrics,
		TTLCeiling:         cfg.CacheTTLCeiling,
		SubscriptionKeyEnv: cfg.APIKeyEnv,
	})
	log.Info().
		Str("provider", client.Name()).
		Dur("cache_ttl_ceiling", cfg.CacheTTLCeiling).
		Msg("gateway dispatcher initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:    Version,
		BuildTime:  BuildTime,
		Logger:     log,
		Metrics:    metrics,
		AccessMode: middleware.ParseAccessMode(cfg.AccessMode),
		Provider:   client.Name(),
		Dispatcher: dispatcher,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("access_mode", cfg.AccessMode).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
