package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowstate/pkg/flowstate/config"
)

func TestFromYAML(t *testing.T) {
	data := []byte(`
frame_interval: 8ms
scheduler: immediate
metrics: true
log_level: info
`)
	s, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Millisecond, s.FrameInterval)
	assert.Equal(t, config.SchedulerImmediate, s.Scheduler)
	assert.True(t, s.Metrics)
	assert.False(t, s.Tracing)
	assert.Equal(t, "info", s.LogLevel)
}

func TestFromYAML_IntegerIsMilliseconds(t *testing.T) {
	s, err := config.FromYAML([]byte("frame_interval: 33\n"))
	require.NoError(t, err)
	assert.Equal(t, 33*time.Millisecond, s.FrameInterval)
}

func TestFromYAML_Empty(t *testing.T) {
	s, err := config.FromYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), s)
}

func TestFromYAML_Errors(t *testing.T) {
	_, err := config.FromYAML([]byte("scheduler: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml")

	_, err = config.FromYAML([]byte("scheduler: vsync\n"))
	assert.ErrorIs(t, err, config.ErrInvalidSettings)
}

func TestFromJSON(t *testing.T) {
	s, err := config.FromJSON([]byte(`{"frame_interval": 4, "scheduler": "manual", "tracing": true}`))
	require.NoError(t, err)
	assert.Equal(t, 4*time.Millisecond, s.FrameInterval)
	assert.Equal(t, config.SchedulerManual, s.Scheduler)
	assert.True(t, s.Tracing)

	_, err = config.FromJSON([]byte(`{`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")

	_, err = config.FromJSON([]byte(`{"frame_interval": "-1s"}`))
	assert.ErrorIs(t, err, config.ErrInvalidSettings)
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
		wantErr string
	}{
		{"yaml", "flowstate.yaml", "scheduler: manual\n", config.SchedulerManual, ""},
		{"yml", "flowstate.yml", "scheduler: immediate\n", config.SchedulerImmediate, ""},
		{"json", "flowstate.json", `{"scheduler": "frame"}`, config.SchedulerFrame, ""},
		{"unsupported", "flowstate.toml", "scheduler = 'frame'", "", "unsupported config file extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			s, err := config.FromFile(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Scheduler)
		})
	}

	_, err := config.FromFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
