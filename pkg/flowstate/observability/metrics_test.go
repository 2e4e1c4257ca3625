package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns its reader.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}
	return reader, cleanup
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumOf totals every data point of a counter.
func sumOf(t *testing.T, rm *metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, "metric %s", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum type for %s", name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "expected real metrics recorder")
}

func TestRecordUpdate(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordUpdate(ctx, 2, 3, 5*time.Millisecond, nil)
	m.RecordUpdate(ctx, 1, 0, time.Millisecond, errors.New("boom"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, rm, "flowstate.update.count"))
	assert.Equal(t, int64(1), sumOf(t, rm, "flowstate.update.errors"))
	assert.Equal(t, int64(6), sumOf(t, rm, "flowstate.node.resolves"))

	latency := findMetric(rm, "flowstate.update.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram type")
	assert.NotEmpty(t, hist.DataPoints)
}

func TestRecordFlushAndFaults(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordFlush(ctx, 2, time.Millisecond)
	m.RecordFlush(ctx, 0, time.Millisecond)
	m.RecordListenerFault(ctx, "next_frame")

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, rm, "flowstate.flush.count"))
	assert.Equal(t, int64(1), sumOf(t, rm, "flowstate.listener.faults"))

	faults := findMetric(rm, "flowstate.listener.faults")
	sum := faults.Data.(metricdata.Sum[int64])
	frame, ok := sum.DataPoints[0].Attributes.Value("frame")
	require.True(t, ok)
	assert.Equal(t, "next_frame", frame.AsString())
}
