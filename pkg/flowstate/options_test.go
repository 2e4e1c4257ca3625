package flowstate

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowstate/pkg/flowstate/config"
	"github.com/randalmurphal/flowstate/pkg/flowstate/observability"
)

func TestDefaultGraphConfig(t *testing.T) {
	cfg := defaultGraphConfig()

	assert.Equal(t, slog.Default(), cfg.logger)
	assert.Nil(t, cfg.ticker)
	assert.IsType(t, observability.NoopMetrics{}, cfg.metrics)
	assert.IsType(t, observability.NoopSpanManager{}, cfg.spans)
}

func TestOptions(t *testing.T) {
	ticker := NewManualTicker()
	logger := slog.New(slog.NewTextHandler(nil, nil))

	cfg := defaultGraphConfig()
	for _, opt := range []Option{
		WithTicker(ticker),
		WithLogger(logger),
		WithGraphID("abc"),
		WithMetrics(true),
		WithTracing(true),
	} {
		opt(&cfg)
	}

	assert.Same(t, ticker, cfg.ticker)
	assert.Same(t, logger, cfg.logger)
	assert.Equal(t, "abc", cfg.id)
	assert.NotNil(t, cfg.metrics)
	assert.NotNil(t, cfg.spans)

	WithMetrics(false)(&cfg)
	WithTracing(false)(&cfg)
	assert.IsType(t, observability.NoopMetrics{}, cfg.metrics)
	assert.IsType(t, observability.NoopSpanManager{}, cfg.spans)
}

func TestWithFrameInterval(t *testing.T) {
	cfg := defaultGraphConfig()
	WithFrameInterval(5 * time.Millisecond)(&cfg)

	ft, ok := cfg.ticker.(frameTicker)
	require.True(t, ok)
	assert.Equal(t, 5*time.Millisecond, ft.interval)

	assert.PanicsWithValue(t, "flowstate: frame interval must be > 0", func() {
		WithFrameInterval(0)
	})
}

func TestWithSettings(t *testing.T) {
	tests := []struct {
		name      string
		settings  config.Settings
		checkTick func(t *testing.T, tk Ticker)
	}{
		{
			name:     "frame",
			settings: config.Settings{Scheduler: config.SchedulerFrame, FrameInterval: 8 * time.Millisecond},
			checkTick: func(t *testing.T, tk Ticker) {
				ft, ok := tk.(frameTicker)
				require.True(t, ok)
				assert.Equal(t, 8*time.Millisecond, ft.interval)
			},
		},
		{
			name:     "immediate",
			settings: config.Settings{Scheduler: config.SchedulerImmediate},
			checkTick: func(t *testing.T, tk Ticker) {
				assert.Equal(t, ImmediateTicker, tk)
			},
		},
		{
			name:     "manual",
			settings: config.Settings{Scheduler: config.SchedulerManual},
			checkTick: func(t *testing.T, tk Ticker) {
				assert.IsType(t, &ManualTicker{}, tk)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultGraphConfig()
			WithSettings(tc.settings)(&cfg)
			tc.checkTick(t, cfg.ticker)
			assert.Equal(t, slog.Default(), cfg.logger, "no level keeps the logger")
		})
	}
}

func TestWithSettings_LogLevelReplacesLogger(t *testing.T) {
	cfg := defaultGraphConfig()
	WithSettings(config.Settings{Scheduler: config.SchedulerImmediate, LogLevel: "warn"})(&cfg)

	require.NotNil(t, cfg.logger)
	assert.NotSame(t, slog.Default(), cfg.logger)
	assert.False(t, cfg.logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, cfg.logger.Enabled(context.Background(), slog.LevelWarn))
}
