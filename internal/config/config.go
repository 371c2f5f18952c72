// Package config provides configuration management for SIGIL with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. Environment variables (SIGIL_* prefix)
//  2. Config file (<home>/config.yaml, default ~/.sigil/config.yaml)
//  3. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for SIGIL.
// It contains all configuration sections for the certificate ledger CLI.
type Config struct {
	// Ledger contains settings for the append-only certificate store.
	Ledger LedgerConfig `yaml:"ledger" mapstructure:"ledger"`

	// Keystore contains settings for the device signing key.
	Keystore KeystoreConfig `yaml:"keystore" mapstructure:"keystore"`

	// Logging contains settings for structured log output.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Watch contains settings for the live ledger watch mode.
	Watch WatchConfig `yaml:"watch" mapstructure:"watch"`
}

// LedgerConfig contains settings for the append-only certificate store.
type LedgerConfig struct {
	// Dir overrides the ledger directory. Empty means <home>/ledger.
	Dir string `yaml:"dir" mapstructure:"dir"`

	// LockTimeout is the maximum wait for the exclusive ledger lock.
	// Default: 5s
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`
}

// KeystoreConfig contains settings for the device signing key.
type KeystoreConfig struct {
	// Backend selects where the private key lives:
	//   - "auto": probe for a hardware provider, fall back to software
	//   - "hardware": require a hardware provider (fail if unavailable)
	//   - "software": always use the file-backed key
	// Default: "auto"
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Dir overrides the software key directory. Empty means <home>/keys.
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LoggingConfig contains settings for structured log output.
type LoggingConfig struct {
	// Level is the minimum log level (debug|info|warn|error).
	// The --verbose and --quiet flags take precedence over this value.
	// Default: "info"
	Level string `yaml:"level" mapstructure:"level"`

	// File enables writing logs to <home>/logs/sigil.log with rotation.
	// Default: true
	File bool `yaml:"file" mapstructure:"file"`
}

// WatchConfig contains settings for the live ledger watch mode.
type WatchConfig struct {
	// Interval is the refresh interval for watch mode.
	// Default: 2s
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Tail is the number of most recent certificates displayed.
	// Default: 15
	Tail int `yaml:"tail" mapstructure:"tail"`
}

// Valid keystore backend values accepted by KeystoreConfig.Backend.
const (
	BackendAuto     = "auto"
	BackendHardware = "hardware"
	BackendSoftware = "software"
)

// Valid log level values accepted by LoggingConfig.Level.
func validLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}
