// Package api provides the HTTP surface of the travel-query gateway.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/treinwijzer/treinwijzer/internal/api/handler"
	"github.com/treinwijzer/treinwijzer/internal/api/middleware"
	"github.com/treinwijzer/treinwijzer/internal/gateway"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version    string
	BuildTime  string
	Logger     zerolog.Logger
	Metrics    *middleware.Metrics
	AccessMode middleware.AccessMode
	Provider   string
	Dispatcher *gateway.Dispatcher
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing("treinwijzer-api"))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	// The gate decides on the TCP peer address, so it must run before
	// RealIP rewrites RemoteAddr from forwarded headers.
	r.Use(middleware.AccessGate(cfg.AccessMode))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Provider)
	queryHandler := handler.NewQueryHandler(cfg.Dispatcher)

	queryRateLimit := middleware.RateLimitByIP(middleware.QueryRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.With(queryRateLimit).Post("/query", queryHandler.Query)
	})

	return r
}
