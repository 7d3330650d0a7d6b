package handler

import (
	"net/http"
	"time"

	"github.com/treinwijzer/treinwijzer/internal/api/models"
	"github.com/treinwijzer/treinwijzer/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	provider  string
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime, provider string) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		provider:  provider,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Details: map[string]any{
			"version":   h.version,
			"buildTime": h.buildTime,
			"provider":  h.provider,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The gateway
// holds no connections of its own; the upstream is only consulted per call,
// so readiness equals liveness.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
	}
	response.JSON(w, r, http.StatusOK, health)
}
