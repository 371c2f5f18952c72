package config

import (
	"slices"
	"strings"

	"github.com/mrz1836/sigil/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - Ledger lock timeout must be positive
//   - Keystore backend must be one of: auto, hardware, software
//   - Logging level must be one of: debug, info, warn, error
//   - Watch interval must be positive
//   - Watch tail must be positive
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateLedgerConfig(&cfg.Ledger); err != nil {
		return err
	}

	if err := validateKeystoreConfig(&cfg.Keystore); err != nil {
		return err
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return err
	}

	if err := validateWatchConfig(&cfg.Watch); err != nil {
		return err
	}

	return nil
}

// validateLedgerConfig checks ledger-specific configuration values.
func validateLedgerConfig(cfg *LedgerConfig) error {
	if cfg.LockTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidLedger,
			"ledger.lock_timeout must be positive, got %s", cfg.LockTimeout)
	}

	return nil
}

// validateKeystoreConfig checks keystore-specific configuration values.
func validateKeystoreConfig(cfg *KeystoreConfig) error {
	switch cfg.Backend {
	case BackendAuto, BackendHardware, BackendSoftware:
		return nil
	default:
		return errors.Wrapf(errors.ErrConfigInvalidKeystore,
			"keystore.backend must be one of: auto, hardware, software, got %q", cfg.Backend)
	}
}

// validateLoggingConfig checks logging-specific configuration values.
func validateLoggingConfig(cfg *LoggingConfig) error {
	if !slices.Contains(validLogLevels(), cfg.Level) {
		return errors.Wrapf(errors.ErrConfigInvalidLogging,
			"logging.level must be one of: %s, got %q",
			strings.Join(validLogLevels(), ", "), cfg.Level)
	}

	return nil
}

// validateWatchConfig checks watch-specific configuration values.
func validateWatchConfig(cfg *WatchConfig) error {
	if cfg.Interval <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatch,
			"watch.interval must be positive, got %s", cfg.Interval)
	}

	if cfg.Tail <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidWatch,
			"watch.tail must be positive, got %d", cfg.Tail)
	}

	return nil
}
