package flowstate

import (
	"log/slog"
	"os"
	"time"

	"github.com/randalmurphal/flowstate/pkg/flowstate/config"
	"github.com/randalmurphal/flowstate/pkg/flowstate/observability"
)

// graphConfig holds the settings resolved from Options.
type graphConfig struct {
	id      string
	logger  *slog.Logger
	ticker  Ticker
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

func defaultGraphConfig() graphConfig {
	return graphConfig{
		logger:  slog.Default(),
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a Graph.
type Option func(*graphConfig)

// WithLogger sets the logger. A nil logger disables logging.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(c *graphConfig) {
		c.logger = logger
	}
}

// WithTicker sets how next-frame flushes are scheduled.
// Default: NewFrameTicker(DefaultFrameInterval)
//
// Example:
//
//	ticker := flowstate.NewManualTicker()
//	g := flowstate.New(flowstate.WithTicker(ticker))
//	// ... updates ...
//	ticker.Tick() // end the frame
func WithTicker(t Ticker) Option {
	return func(c *graphConfig) {
		c.ticker = t
	}
}

// WithFrameInterval uses a timer-based ticker with the given interval.
//
// Panics if d <= 0.
func WithFrameInterval(d time.Duration) Option {
	if d <= 0 {
		panic("flowstate: frame interval must be > 0")
	}
	return func(c *graphConfig) {
		c.ticker = NewFrameTicker(d)
	}
}

// WithMetrics enables or disables OpenTelemetry metrics.
// Default: disabled
func WithMetrics(enabled bool) Option {
	return func(c *graphConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables or disables OpenTelemetry tracing.
// Default: disabled
func WithTracing(enabled bool) Option {
	return func(c *graphConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithGraphID sets the identifier attached to logs and spans.
// If not set, a UUID is generated.
func WithGraphID(id string) Option {
	return func(c *graphConfig) {
		c.id = id
	}
}

// WithSettings applies loaded settings. The "manual" scheduler installs a
// ManualTicker that is never ticked; the host ends frames with Graph.Flush.
// A non-empty LogLevel replaces the logger with a JSON logger on stderr at
// that level.
func WithSettings(s config.Settings) Option {
	return func(c *graphConfig) {
		switch s.Scheduler {
		case config.SchedulerImmediate:
			c.ticker = ImmediateTicker
		case config.SchedulerManual:
			c.ticker = NewManualTicker()
		default:
			c.ticker = NewFrameTicker(s.FrameInterval)
		}

		WithMetrics(s.Metrics)(c)
		WithTracing(s.Tracing)(c)

		if level, ok := s.Level(); ok {
			c.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		}
	}
}
