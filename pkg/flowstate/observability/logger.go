// Package observability provides structured logging, metrics, and tracing
// for flowstate graphs.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds the graph identifier to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "graph-123")
//	enriched.Info("rebuilt") // includes graph_id
func EnrichLogger(logger *slog.Logger, graphID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("graph_id", graphID))
}

// LogBuild logs the registration of new nodes.
func LogBuild(logger *slog.Logger, mount string, created int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("nodes created",
		slog.String("mount", mount),
		slog.Int("created", created),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogUpdate logs a completed update cycle.
func LogUpdate(logger *slog.Logger, changed, upstream, observers int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("update applied",
		slog.Int("changed", changed),
		slog.Int("upstream", upstream),
		slog.Int("observers", observers),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogUpdateError logs an update cycle that failed while resolving.
func LogUpdateError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Error("update failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogFlush logs the end of a frame.
func LogFlush(logger *slog.Logger, listeners, faults int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("frame flushed",
		slog.Int("listeners", listeners),
		slog.Int("faults", faults),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogListenerFault logs a listener that panicked. The fault does not stop
// other listeners.
func LogListenerFault(logger *slog.Logger, ticket uint64, frame string, err error) {
	if logger == nil {
		return
	}
	logger.Error("listener failed",
		slog.Uint64("ticket", ticket),
		slog.String("frame", frame),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
