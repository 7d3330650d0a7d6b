// Package provider defines the upstream transit-information client contract
// consumed by the gateway. Implementations live in subpackages (e.g. ns).
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// Resource identifies one upstream query the gateway can issue.
type Resource string

const (
	ResourceStationSearch      Resource = "station_search"
	ResourceStationsNearest    Resource = "stations_nearest"
	ResourceDepartures         Resource = "departures"
	ResourceArrivals           Resource = "arrivals"
	ResourceTrips              Resource = "trips"
	ResourceTripDetail         Resource = "trip_detail"
	ResourceJourneyDetail      Resource = "journey_detail"
	ResourceDisruptions        Resource = "disruptions"
	ResourceStationDisruptions Resource = "station_disruptions"
	ResourceDisruptionDetail   Resource = "disruption_detail"
)

// Response is a raw upstream response plus its freshness hint.
type Response struct {
	// Body is the raw provider JSON, decoded downstream by normalization.
	Body json.RawMessage

	// MaxAgeSeconds is the freshness hint reported by the upstream
	// (Cache-Control max-age). Zero means the upstream gave no hint.
	MaxAgeSeconds int
}

// ErrorCode is the tri-state upstream failure classification.
type ErrorCode string

const (
	// ErrUnreachable covers network failures and timeouts.
	ErrUnreachable ErrorCode = "unreachable"

	// ErrHTTP covers non-2xx upstream responses.
	ErrHTTP ErrorCode = "http_error"

	// ErrInvalidResponse covers unparseable or structurally broken payloads.
	ErrInvalidResponse ErrorCode = "invalid_response"
)

// Error is a classified upstream failure.
type Error struct {
	Code    ErrorCode
	Message string

	// Status is the HTTP status for http_error failures.
	Status int

	// Details carries extra context for the caller (observed bounds, body
	// snippets); may be nil.
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream %s: %s", e.Code, e.Message)
}

// NewError builds a classified upstream error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Client is the upstream transit-information client. Implementations must
// honor the context deadline and surface timeouts as ErrUnreachable.
type Client interface {
	// Call executes one resource query and returns the raw response.
	// Failures are always *Error values.
	Call(ctx context.Context, resource Resource, query url.Values) (*Response, error)

	// Name identifies the provider for logging.
	Name() string
}
