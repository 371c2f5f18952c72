package config

import "github.com/mrz1836/sigil/internal/constants"

// DefaultConfig returns a Config populated with built-in defaults.
// These values match the defaults registered on the Viper instance in
// setDefaults; keep both in sync.
func DefaultConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Dir:         "",
			LockTimeout: constants.DefaultLockTimeout,
		},
		Keystore: KeystoreConfig{
			Backend: BackendAuto,
			Dir:     "",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  true,
		},
		Watch: WatchConfig{
			Interval: constants.DefaultWatchInterval,
			Tail:     constants.DefaultWatchTail,
		},
	}
}
