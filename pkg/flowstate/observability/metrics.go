package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records flowstate metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordUpdate records one update cycle: how many nodes were written,
	// how many were recomputed upstream, how long it took and whether it failed.
	RecordUpdate(ctx context.Context, changed, upstream int, duration time.Duration, err error)

	// RecordFlush records the end of a frame and the listeners it ran.
	RecordFlush(ctx context.Context, listeners int, duration time.Duration)

	// RecordListenerFault records a listener that panicked.
	RecordListenerFault(ctx context.Context, frame string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	updates        metric.Int64Counter
	updateErrors   metric.Int64Counter
	updateLatency  metric.Float64Histogram
	resolves       metric.Int64Counter
	flushes        metric.Int64Counter
	listenerFaults metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("flowstate")

	updates, err := meter.Int64Counter("flowstate.update.count",
		metric.WithDescription("Number of update cycles"),
	)
	if err != nil {
		return nil, err
	}

	updateErrors, err := meter.Int64Counter("flowstate.update.errors",
		metric.WithDescription("Number of update cycles aborted by a resolver fault"),
	)
	if err != nil {
		return nil, err
	}

	updateLatency, err := meter.Float64Histogram("flowstate.update.latency_ms",
		metric.WithDescription("Update cycle latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	resolves, err := meter.Int64Counter("flowstate.node.resolves",
		metric.WithDescription("Number of node recomputations"),
	)
	if err != nil {
		return nil, err
	}

	flushes, err := meter.Int64Counter("flowstate.flush.count",
		metric.WithDescription("Number of frame flushes"),
	)
	if err != nil {
		return nil, err
	}

	listenerFaults, err := meter.Int64Counter("flowstate.listener.faults",
		metric.WithDescription("Number of listeners that panicked"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		updates:        updates,
		updateErrors:   updateErrors,
		updateLatency:  updateLatency,
		resolves:       resolves,
		flushes:        flushes,
		listenerFaults: listenerFaults,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordUpdate records an update cycle.
func (m *otelMetrics) RecordUpdate(ctx context.Context, changed, upstream int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))

	m.updates.Add(ctx, 1, attrs)
	m.updateLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	m.resolves.Add(ctx, int64(changed+upstream))

	if err != nil {
		m.updateErrors.Add(ctx, 1)
	}
}

// RecordFlush records a frame flush.
func (m *otelMetrics) RecordFlush(ctx context.Context, listeners int, _ time.Duration) {
	m.flushes.Add(ctx, 1, metric.WithAttributes(attribute.Int("listeners", listeners)))
}

// RecordListenerFault records a listener panic.
func (m *otelMetrics) RecordListenerFault(ctx context.Context, frame string) {
	m.listenerFaults.Add(ctx, 1, metric.WithAttributes(attribute.String("frame", frame)))
}
