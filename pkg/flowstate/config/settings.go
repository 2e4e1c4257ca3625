package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Scheduler modes.
const (
	SchedulerFrame     = "frame"
	SchedulerImmediate = "immediate"
	SchedulerManual    = "manual"
)

// DefaultFrameInterval matches flowstate.DefaultFrameInterval.
const DefaultFrameInterval = 16 * time.Millisecond

// ErrInvalidSettings indicates a settings value outside its allowed range.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings configures a flowstate graph.
type Settings struct {
	// FrameInterval is the delay between an update and the next-frame
	// flush when Scheduler is "frame". Default: 16ms.
	FrameInterval time.Duration

	// Scheduler selects how frames end: "frame" (timer), "immediate"
	// (flush after every update) or "manual" (host calls Flush).
	// Default: "frame".
	Scheduler string

	// Metrics enables OpenTelemetry metrics. Default: false.
	Metrics bool

	// Tracing enables OpenTelemetry tracing. Default: false.
	Tracing bool

	// LogLevel is one of "debug", "info", "warn", "error". Empty keeps
	// the caller's logger as is.
	LogLevel string
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		FrameInterval: DefaultFrameInterval,
		Scheduler:     SchedulerFrame,
	}
}

// Validate checks that every field holds an allowed value.
// Multiple problems are joined together.
func (s Settings) Validate() error {
	var errs []error

	if s.FrameInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: frame_interval must be > 0, got %s", ErrInvalidSettings, s.FrameInterval))
	}

	switch s.Scheduler {
	case SchedulerFrame, SchedulerImmediate, SchedulerManual:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown scheduler %q", ErrInvalidSettings, s.Scheduler))
	}

	if _, ok := parseLevel(s.LogLevel); !ok && s.LogLevel != "" {
		errs = append(errs, fmt.Errorf("%w: unknown log_level %q", ErrInvalidSettings, s.LogLevel))
	}

	return errors.Join(errs...)
}

// Level returns the slog level for LogLevel and whether one was set.
func (s Settings) Level() (slog.Level, bool) {
	return parseLevel(s.LogLevel)
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// fromMap builds Settings from decoded YAML or JSON. Missing keys and values
// of the wrong type keep their defaults.
func fromMap(data map[string]any) Settings {
	s := Default()
	if data == nil {
		return s
	}
	s.FrameInterval = durationValue(data, "frame_interval", s.FrameInterval)
	s.Scheduler = strings.ToLower(stringValue(data, "scheduler", s.Scheduler))
	s.Metrics = boolValue(data, "metrics", s.Metrics)
	s.Tracing = boolValue(data, "tracing", s.Tracing)
	s.LogLevel = stringValue(data, "log_level", s.LogLevel)
	return s
}

func stringValue(data map[string]any, key, defaultVal string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return defaultVal
}

func boolValue(data map[string]any, key string, defaultVal bool) bool {
	if b, ok := data[key].(bool); ok {
		return b
	}
	return defaultVal
}

// durationValue accepts:
//   - string: parsed with time.ParseDuration
//   - int, int64, float64: interpreted as milliseconds
//   - time.Duration: used directly
func durationValue(data map[string]any, key string, defaultVal time.Duration) time.Duration {
	v, ok := data[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	case int:
		return time.Duration(val) * time.Millisecond
	case int64:
		return time.Duration(val) * time.Millisecond
	case float64:
		return time.Duration(val * float64(time.Millisecond))
	case time.Duration:
		return val
	}
	return defaultVal
}
