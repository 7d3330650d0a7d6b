// Package handler provides HTTP handlers for the gateway API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/treinwijzer/treinwijzer/internal/api/models"
	"github.com/treinwijzer/treinwijzer/internal/api/response"
	"github.com/treinwijzer/treinwijzer/internal/gateway"
)

// maxQueryBodyBytes caps the request body of one query.
const maxQueryBodyBytes = 1 << 20

// QueryHandler serves the single gateway endpoint.
type QueryHandler struct {
	dispatcher *gateway.Dispatcher
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(dispatcher *gateway.Dispatcher) *QueryHandler {
	return &QueryHandler{dispatcher: dispatcher}
}

// Query handles POST /v1/query: one tool call in, one tagged result record
// out. Gateway-level failures are part of the result body; only a malformed
// envelope is a transport-level problem.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxQueryBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		detail := "request body must be a JSON object with action and args"
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			detail = "request body is not valid JSON"
		}
		response.BadRequest(w, r, detail, nil)
		return
	}
	if req.Action == "" {
		response.BadRequest(w, r, "action is required", []models.FieldError{
			{Field: "action", Message: "is required"},
		})
		return
	}

	out := h.dispatcher.Dispatch(r.Context(), req.Action, req.Args)
	response.JSON(w, r, statusFor(out), out)
}

// statusFor maps a gateway outcome to an HTTP status. The body is always
// the full Output record.
func statusFor(out *gateway.Output) int {
	if out.Kind != gateway.KindError {
		return http.StatusOK
	}
	switch out.Error.Code {
	case gateway.ErrInvalidToolInput:
		return http.StatusBadRequest
	case gateway.ErrStationNotFound:
		return http.StatusNotFound
	case gateway.ErrConstraintNoMatch:
		return http.StatusUnprocessableEntity
	case gateway.ErrUpstreamUnreachable, gateway.ErrUpstreamHTTP, gateway.ErrUpstreamInvalidResponse:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
