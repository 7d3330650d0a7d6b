package gateway

import (
	"github.com/treinwijzer/treinwijzer/internal/intent"
	"github.com/treinwijzer/treinwijzer/internal/provider"
)

// ErrorCode classifies a failed gateway call. All errors are local to one
// call: no retries, no partial success.
type ErrorCode string

const (
	ErrInvalidToolInput        ErrorCode = "invalid_tool_input"
	ErrStationNotFound         ErrorCode = "station_not_found"
	ErrConstraintNoMatch       ErrorCode = "constraint_no_match"
	ErrConfig                  ErrorCode = "config_error"
	ErrUpstreamUnreachable     ErrorCode = "upstream_unreachable"
	ErrUpstreamHTTP            ErrorCode = "upstream_http_error"
	ErrUpstreamInvalidResponse ErrorCode = "upstream_invalid_response"
	ErrUnknown                 ErrorCode = "unknown"
)

// CallError is the terminal error record of a failed call. Details carry
// enough structure (offending keys, relaxation hints, counts) for an
// automated caller to self-correct.
type CallError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *CallError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// FieldError is one argument validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func invalidInput(message string, details map[string]any) *CallError {
	return &CallError{Code: ErrInvalidToolInput, Message: message, Details: details}
}

func invalidFields(errs []FieldError) *CallError {
	return invalidInput("invalid arguments", map[string]any{"fields": errs})
}

func unsupportedConstraints(err *intent.UnsupportedError) *CallError {
	return invalidInput("unsupported hard constraints for this action", map[string]any{
		"unsupported": err.Unsupported,
		"allowed":     err.Allowed,
	})
}

func noMatch(err *intent.NoMatchError) *CallError {
	return &CallError{
		Code:    ErrConstraintNoMatch,
		Message: "hard constraints filtered out every result",
		Details: map[string]any{
			"applied":         err.Applied,
			"relaxationHints": err.Hints,
			"before":          err.Before,
			"after":           0,
		},
	}
}

func fromUpstream(err *provider.Error) *CallError {
	ce := &CallError{Message: err.Message, Details: err.Details}
	switch err.Code {
	case provider.ErrUnreachable:
		ce.Code = ErrUpstreamUnreachable
	case provider.ErrHTTP:
		ce.Code = ErrUpstreamHTTP
		if ce.Details == nil {
			ce.Details = map[string]any{}
		}
		ce.Details["status"] = err.Status
	case provider.ErrInvalidResponse:
		ce.Code = ErrUpstreamInvalidResponse
	default:
		ce.Code = ErrUnknown
	}
	return ce
}
