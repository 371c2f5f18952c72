package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultHome_EnvOverride(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("SIGIL_HOME", custom)

	home, err := DefaultHome()
	require.NoError(t, err)
	assert.Equal(t, custom, home, "SIGIL_HOME should take precedence")
}

func TestDefaultHome_FallsBackToUserHome(t *testing.T) {
	t.Setenv("SIGIL_HOME", "")

	userHome, err := os.UserHomeDir()
	require.NoError(t, err)

	home, err := DefaultHome()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(userHome, ".sigil"), home)
}

func TestConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/srv/sigil", "config.yaml"), ConfigPath("/srv/sigil"))
}

func TestLedgerDir(t *testing.T) {
	t.Run("default derives from home", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, filepath.Join("/home/u/.sigil", "ledger"), cfg.LedgerDir("/home/u/.sigil"))
	})

	t.Run("configured dir wins", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Ledger.Dir = "/var/lib/sigil-ledger"
		assert.Equal(t, "/var/lib/sigil-ledger", cfg.LedgerDir("/home/u/.sigil"))
	})

	t.Run("nil config derives from home", func(t *testing.T) {
		var cfg *Config
		assert.Equal(t, filepath.Join("/home/u/.sigil", "ledger"), cfg.LedgerDir("/home/u/.sigil"))
	})
}

func TestKeysDir(t *testing.T) {
	t.Run("default derives from home", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Equal(t, filepath.Join("/home/u/.sigil", "keys"), cfg.KeysDir("/home/u/.sigil"))
	})

	t.Run("configured dir wins", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Keystore.Dir = "/var/lib/sigil-keys"
		assert.Equal(t, "/var/lib/sigil-keys", cfg.KeysDir("/home/u/.sigil"))
	})

	t.Run("nil config derives from home", func(t *testing.T) {
		var cfg *Config
		assert.Equal(t, filepath.Join("/home/u/.sigil", "keys"), cfg.KeysDir("/home/u/.sigil"))
	})
}

func TestLogsDir(t *testing.T) {
	assert.Equal(t, filepath.Join("/home/u/.sigil", "logs"), LogsDir("/home/u/.sigil"))
}
