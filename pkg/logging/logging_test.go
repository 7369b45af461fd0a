package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.in))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.True(t, cfg.JSON)
	assert.NotNil(t, cfg.Output)

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "text")

	cfg = DefaultConfig()
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.False(t, cfg.JSON)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, JSON: true, Output: &buf})

	logger.Info("dropped")
	logger.Warn("kept", "rows", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.EqualValues(t, 2, entry["rows"])
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Output: &buf})

	logger.Debug("line skipped", "page", 1)
	assert.Contains(t, buf.String(), `msg="line skipped"`)
	assert.Contains(t, buf.String(), "page=1")
}

func TestNop(t *testing.T) {
	logger := Nop()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))

	assert.Same(t, logger, OrNop(logger))
	assert.NotNil(t, OrNop(nil))
}

func TestConfigFor(t *testing.T) {
	cfg := ConfigFor("debug", "json")
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.True(t, cfg.JSON)
	assert.NotNil(t, cfg.Output)

	cfg = ConfigFor("", "text")
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.False(t, cfg.JSON)

	assert.Equal(t, ProductionConfig().JSON, ConfigFor("info", " JSON ").JSON)
}
