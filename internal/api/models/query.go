package models

import "time"

// QueryRequest is the body of POST /v1/query: one gateway tool call.
type QueryRequest struct {
	// Action is the action name, e.g. "trips.search".
	Action string `json:"action"`

	// Args is the raw argument object; the gateway coerces and validates it.
	Args map[string]any `json:"args,omitempty"`
}

// HealthStatus represents a health check status value.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
)

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus   `json:"status"`
	Time    time.Time      `json:"time"`
	Details map[string]any `json:"details,omitempty"`
}
