package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 0, cfg.HTTP.MaxRetries)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "*", cfg.Server.CORSOrigin)
	assert.True(t, cfg.Providers.Finn.Enabled)
	assert.True(t, cfg.Providers.Tise.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
}

func TestLoad(t *testing.T) {
	t.Run("missing default file falls back to defaults", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		cfg, v, err := Load("")
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, 15*time.Second, cfg.HTTP.Timeout)
	})

	t.Run("explicit file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("http:\n  timeout: 5s\n  max_retries: 2\nserver:\n  addr: \":9090\"\nproviders:\n  tise:\n    enabled: false\n"), 0644))

		cfg, _, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
		assert.Equal(t, 2, cfg.HTTP.MaxRetries)
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.False(t, cfg.Providers.Tise.Enabled)
		assert.True(t, cfg.Providers.Finn.Enabled)
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("KVITTERING_SERVER_ADDR", "127.0.0.1:7000")
		t.Setenv("KVITTERING_HTTP_TIMEOUT", "3s")

		cfg, _, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
		assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("http:\n  max_retries: -1\n"), 0644))

		_, _, err := Load(path)
		assert.ErrorContains(t, err, "max_retries")
	})
}

func TestSaveDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, SaveDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 15s")
	assert.Contains(t, string(data), "cors_origin:")

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestGetConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "kvittering"), GetConfigDir())

	require.NoError(t, InitializeDirs())
	assert.DirExists(t, filepath.Join(dir, "kvittering"))
}
