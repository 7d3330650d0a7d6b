package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/treinwijzer/treinwijzer/internal/api/middleware"
)

// logLine serves a single request through Logger (wrapped in extra, innermost
// last) and decodes the resulting JSON log entry.
func logLine(t *testing.T, inner http.HandlerFunc, req *http.Request, outer ...func(http.Handler) http.Handler) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	var handler http.Handler = middleware.Logger(zerolog.New(&buf))(inner)
	for i := len(outer) - 1; i >= 0; i-- {
		handler = outer[i](handler)
	}

	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLoggerRecordsRequestFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/query", http.NoBody)
	req.Header.Set("User-Agent", "treinwijzer-test")

	entry := logLine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"kind":"error"}`))
	}, req)

	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/v1/query", entry["path"])
	assert.Equal(t, float64(422), entry["status"])
	assert.Equal(t, float64(len(`{"kind":"error"}`)), entry["bytes"])
	assert.Equal(t, "treinwijzer-test", entry["user_agent"])
	assert.NotNil(t, entry["duration"])
}

func TestLoggerDefaultsStatusTo200(t *testing.T) {
	entry := logLine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	assert.Equal(t, float64(200), entry["status"])
}

func TestLoggerCarriesRequestID(t *testing.T) {
	entry := logLine(t, func(w http.ResponseWriter, r *http.Request) {},
		httptest.NewRequest(http.MethodGet, "/v1/query", http.NoBody),
		middleware.RequestID)

	id, _ := entry["request_id"].(string)
	assert.Contains(t, id, "req_")
}

func TestLoggerCarriesTraceContext(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer func() { _ = tp.Shutdown(context.Background()) }()

	entry := logLine(t, func(w http.ResponseWriter, r *http.Request) {},
		httptest.NewRequest(http.MethodGet, "/v1/query", http.NoBody),
		middleware.Tracing("treinwijzer"))

	traceID, _ := entry["trace_id"].(string)
	spanID, _ := entry["span_id"].(string)
	assert.Len(t, traceID, 32)
	assert.Len(t, spanID, 16)
}
