package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treinwijzer/treinwijzer/internal/telemetry"
)

func TestInitDisabled(t *testing.T) {
	provider, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName:    "treinwijzer-test",
		ServiceVersion: "0.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})
	require.NoError(t, err)

	// Disabled telemetry still hands out usable noop instruments.
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestShutdownWithNilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestGlobalAccessors(t *testing.T) {
	assert.NotNil(t, telemetry.Tracer("test-tracer"))
	assert.NotNil(t, telemetry.Meter("test-meter"))
}

func TestQueryMetricsRecord(t *testing.T) {
	m, err := telemetry.NewQueryMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCall(ctx, "trips.search", "success", "", false, 120*time.Millisecond)
	m.RecordCall(ctx, "trips.search", "error", "constraint_no_match", false, 80*time.Millisecond)
	m.RecordUpstream(ctx, "ns", "trips", 60*time.Millisecond, false)
	m.RecordUpstream(ctx, "ns", "trips", 10*time.Millisecond, true)
}

func TestQueryMetricsNilReceiver(t *testing.T) {
	var m *telemetry.QueryMetrics
	m.RecordCall(context.Background(), "stations.search", "success", "", true, time.Millisecond)
	m.RecordUpstream(context.Background(), "ns", "station_search", time.Millisecond, false)
}
