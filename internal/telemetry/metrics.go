package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const queryMeterName = "github.com/treinwijzer/treinwijzer/internal/gateway"

// QueryMetrics holds the gateway's domain instruments: one record per
// dispatched call and one per upstream fetch. A nil *QueryMetrics is a
// valid no-op recorder.
type QueryMetrics struct {
	callTotal        metric.Int64Counter
	callDuration     metric.Float64Histogram
	upstreamTotal    metric.Int64Counter
	upstreamDuration metric.Float64Histogram
}

// NewQueryMetrics creates the gateway instruments on the global meter.
func NewQueryMetrics() (*QueryMetrics, error) {
	meter := otel.Meter(queryMeterName)

	callTotal, err := meter.Int64Counter(
		"gateway.call.total",
		metric.WithDescription("Dispatched gateway calls by action and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	callDuration, err := meter.Float64Histogram(
		"gateway.call.duration",
		metric.WithDescription("End-to-end duration of gateway calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	upstreamTotal, err := meter.Int64Counter(
		"gateway.upstream.total",
		metric.WithDescription("Upstream provider fetches by resource"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	upstreamDuration, err := meter.Float64Histogram(
		"gateway.upstream.duration",
		metric.WithDescription("Duration of upstream provider fetches in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &QueryMetrics{
		callTotal:        callTotal,
		callDuration:     callDuration,
		upstreamTotal:    upstreamTotal,
		upstreamDuration: upstreamDuration,
	}, nil
}

// RecordCall records one dispatched call. errorCode is empty on success.
func (m *QueryMetrics) RecordCall(ctx context.Context, action, kind, errorCode string, cached bool, d time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("gateway.action", action),
		attribute.String("gateway.kind", kind),
		attribute.Bool("gateway.cached", cached),
	}
	if errorCode != "" {
		attrs = append(attrs, attribute.String("gateway.error_code", errorCode))
	}
	m.callTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.callDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// RecordUpstream records one provider fetch.
func (m *QueryMetrics) RecordUpstream(ctx context.Context, provider, resource string, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.resource", resource),
	}
	if failed {
		attrs = append(attrs, attribute.Bool("error", true))
	}
	m.upstreamTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.upstreamDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}
