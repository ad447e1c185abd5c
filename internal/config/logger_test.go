package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("console text respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(&LoggingConfig{Level: "warn", Format: "text"}, &buf)
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown", "key", "value")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(&LoggingConfig{Level: "debug", Format: "json"}, &buf)
		require.NoError(t, err)

		logger.Debug("hello")
		assert.Contains(t, buf.String(), `"msg":"hello"`)
	})

	t.Run("file output creates directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "kvittering.log")
		var console bytes.Buffer
		logger, err := NewLogger(&LoggingConfig{Level: "info", File: path, MaxSize: 1}, &console)
		require.NoError(t, err)

		logger.Info("to file")
		assert.Empty(t, console.String())
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})
}

func TestColoredTextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewColoredTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.With("provider", "finn").WithGroup("req").Error("boom", "status", 500)

	out := buf.String()
	assert.Contains(t, out, "\033[31m")
	assert.Contains(t, out, "provider=finn")
	assert.Contains(t, out, "req.status=500")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}
