package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/errors"
)

// DefaultHome returns the path to the SIGIL home directory.
// The SIGIL_HOME environment variable takes precedence when set;
// otherwise this is ~/.sigil on Unix systems.
//
// Returns an error if the user home directory cannot be determined.
func DefaultHome() (string, error) {
	if override := os.Getenv("SIGIL_HOME"); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.SigilHome), nil
}

// ConfigPath returns the full path to the configuration file inside home.
// This is typically ~/.sigil/config.yaml on Unix systems.
func ConfigPath(home string) string {
	return filepath.Join(home, constants.GlobalConfigName)
}

// LedgerDir returns the directory holding the ledger file.
// The configured ledger.dir takes precedence; empty means <home>/ledger.
func (c *Config) LedgerDir(home string) string {
	if c != nil && c.Ledger.Dir != "" {
		return c.Ledger.Dir
	}
	return filepath.Join(home, constants.LedgerDir)
}

// KeysDir returns the directory holding the software device key.
// The configured keystore.dir takes precedence; empty means <home>/keys.
func (c *Config) KeysDir(home string) string {
	if c != nil && c.Keystore.Dir != "" {
		return c.Keystore.Dir
	}
	return filepath.Join(home, constants.KeysDir)
}

// LogsDir returns the directory holding rotated CLI log files.
// This is always <home>/logs.
func LogsDir(home string) string {
	return filepath.Join(home, constants.LogsDir)
}
