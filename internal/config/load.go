package config

import (
	"context"
	stderrors "errors"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/sigil/internal/errors"
)

// newViperInstance creates a new Viper instance with standard SIGIL configuration.
// This includes environment variable prefix (SIGIL_), key replacer, and defaults.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SIGIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError returns true if the error is a viper config file not found error.
// This helps consolidate the common pattern of checking for missing config files.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config struct and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper precedence.
// Configuration is loaded in the following order (highest precedence first):
//  1. Environment variables (SIGIL_* prefix)
//  2. Config file (<home>/config.yaml)
//  3. Built-in defaults
//
// The home parameter is the SIGIL home directory (see DefaultHome).
//
// The function returns an error only for actual configuration problems,
// not for a missing config file (which is expected before `sigil init`).
//
// The context parameter is accepted for API consistency and future use,
// but is not currently used for cancellation since config file reads are
// typically fast local I/O operations.
func Load(ctx context.Context, home string) (*Config, error) {
	v := newViperInstance()

	configPath := ConfigPath(home)
	if fileExists(configPath) {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Wrapf(err, "failed to read config file: %s", configPath)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	// Log loaded configuration for debugging
	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("keystore.backend", cfg.Keystore.Backend).
		Dur("ledger.lock_timeout", cfg.Ledger.LockTimeout).
		Dur("watch.interval", cfg.Watch.Interval).
		Msg("configuration loaded and unmarshaled")

	// Validate the configuration
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// LoadFromPaths loads configuration from a specific file path for testing.
// This function allows precise control over which config file is loaded.
//
// configPath can be empty to load defaults and environment only.
func LoadFromPaths(_ context.Context, configPath string) (*Config, error) {
	v := newViperInstance()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read config: %s", configPath)
		}
	}

	return unmarshalAndValidate(v)
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// setDefaults configures all default values on the Viper instance.
// These defaults match the values from DefaultConfig().
// IMPORTANT: Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	// Ledger defaults
	v.SetDefault("ledger.dir", "")
	v.SetDefault("ledger.lock_timeout", "5s")

	// Keystore defaults
	v.SetDefault("keystore.backend", BackendAuto)
	v.SetDefault("keystore.dir", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)

	// Watch defaults
	v.SetDefault("watch.interval", "2s")
	v.SetDefault("watch.tail", 15)
}

// viperDecoderOption returns the decoder options for Viper unmarshal.
// This configures mapstructure to handle time.Duration conversion from strings.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}
