package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil/internal/constants"
)

func TestLoad_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	home := t.TempDir()

	cfg, err := Load(context.Background(), home)
	require.NoError(t, err, "Load should not fail when no config file exists")
	require.NotNil(t, cfg, "Config should not be nil")

	assert.Equal(t, constants.DefaultLockTimeout, cfg.Ledger.LockTimeout, "should use default lock timeout")
	assert.Equal(t, BackendAuto, cfg.Keystore.Backend, "should use default keystore backend")
	assert.Equal(t, "info", cfg.Logging.Level, "should use default log level")
	assert.True(t, cfg.Logging.File, "file logging should default to enabled")
	assert.Equal(t, constants.DefaultWatchInterval, cfg.Watch.Interval, "should use default watch interval")
	assert.Equal(t, constants.DefaultWatchTail, cfg.Watch.Tail, "should use default watch tail")
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	home := t.TempDir()

	err := os.WriteFile(ConfigPath(home), []byte(`
ledger:
  lock_timeout: 10s
keystore:
  backend: software
watch:
  interval: 5s
  tail: 3
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(context.Background(), home)
	require.NoError(t, err, "Load should succeed")

	assert.Equal(t, 10*time.Second, cfg.Ledger.LockTimeout, "should use file lock timeout")
	assert.Equal(t, BackendSoftware, cfg.Keystore.Backend, "should use file backend")
	assert.Equal(t, 5*time.Second, cfg.Watch.Interval, "should use file watch interval")
	assert.Equal(t, 3, cfg.Watch.Tail, "should use file watch tail")

	// Keys absent from the file keep their defaults
	assert.Equal(t, "info", cfg.Logging.Level, "unset keys should keep defaults")
	assert.True(t, cfg.Logging.File, "unset keys should keep defaults")
}

func TestLoad_EnvVarOverridesConfigFile(t *testing.T) {
	home := t.TempDir()

	err := os.WriteFile(ConfigPath(home), []byte(`
keystore:
  backend: software
`), 0o600)
	require.NoError(t, err)

	t.Setenv("SIGIL_KEYSTORE_BACKEND", "hardware")

	cfg, err := Load(context.Background(), home)
	require.NoError(t, err, "Load should succeed")

	assert.Equal(t, BackendHardware, cfg.Keystore.Backend, "env var should override config file")
}

func TestLoad_EnvVarMapping(t *testing.T) {
	tests := []struct {
		envVar   string
		value    string
		validate func(*testing.T, *Config)
	}{
		{
			envVar: "SIGIL_KEYSTORE_BACKEND",
			value:  "software",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, BackendSoftware, c.Keystore.Backend)
			},
		},
		{
			envVar: "SIGIL_LEDGER_LOCK_TIMEOUT",
			value:  "30s",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, 30*time.Second, c.Ledger.LockTimeout)
			},
		},
		{
			envVar: "SIGIL_LOGGING_LEVEL",
			value:  "debug",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, "debug", c.Logging.Level)
			},
		},
		{
			envVar: "SIGIL_LOGGING_FILE",
			value:  "false",
			validate: func(t *testing.T, c *Config) {
				assert.False(t, c.Logging.File)
			},
		},
		{
			envVar: "SIGIL_WATCH_TAIL",
			value:  "50",
			validate: func(t *testing.T, c *Config) {
				assert.Equal(t, 50, c.Watch.Tail)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)

			cfg, err := Load(context.Background(), t.TempDir())
			require.NoError(t, err, "Load should succeed")
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	home := t.TempDir()

	err := os.WriteFile(ConfigPath(home), []byte(`
keystore:
  backend: tpm
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(context.Background(), home)
	require.Error(t, err, "Load should fail for unknown backend")
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "keystore.backend")
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	home := t.TempDir()

	err := os.WriteFile(ConfigPath(home), []byte("ledger: [unclosed"), 0o600)
	require.NoError(t, err)

	cfg, err := Load(context.Background(), home)
	require.Error(t, err, "Load should fail for malformed YAML")
	assert.Nil(t, cfg)
}

func TestLoadFromPaths_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPaths(context.Background(), "")
	require.NoError(t, err, "LoadFromPaths should succeed with no config file")

	assert.Equal(t, BackendAuto, cfg.Keystore.Backend)
	assert.Equal(t, constants.DefaultLockTimeout, cfg.Ledger.LockTimeout)
}

func TestLoadFromPaths_MissingFileIgnored(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist.yaml")

	cfg, err := LoadFromPaths(context.Background(), missing)
	require.NoError(t, err, "LoadFromPaths should treat a missing file as defaults")

	assert.Equal(t, BackendAuto, cfg.Keystore.Backend)
}

func TestLoadFromPaths_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(configPath, []byte(`
logging:
  level: warn
`), 0o600)
	require.NoError(t, err)

	cfg, err := LoadFromPaths(context.Background(), configPath)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
}
