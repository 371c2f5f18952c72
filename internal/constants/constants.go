// Package constants provides centralized constant values used throughout SIGIL.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names used by SIGIL for organizing data under the home directory.
const (
	// SigilHome is the hidden directory name where SIGIL stores all its data.
	// This directory is created in the user's home directory.
	SigilHome = ".sigil"

	// LedgerDir is the directory name where the certificate ledger is stored.
	LedgerDir = "ledger"

	// KeysDir is the directory name where device signing keys are stored.
	KeysDir = "keys"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"
)

// File names used by SIGIL for state persistence.
const (
	// LedgerFileName is the JSON file holding the full certificate chain.
	LedgerFileName = "ledger.json"

	// KeyFileName is the file holding the software device signing key.
	KeyFileName = "device.key"

	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.sigil/logs/sigil.log
	CLILogFileName = "sigil.log"

	// GlobalConfigName is the name of the global SIGIL configuration file.
	// This file is located in the SIGIL home directory.
	GlobalConfigName = "config.yaml"
)

// Chain constants (fixed, non-configurable values).
const (
	// GenesisHash is the sentinel previous-certificate hash carried by the
	// first certificate in the chain.
	GenesisHash = "GENESIS"

	// HashHexLength is the length of a hex-encoded SHA-256 digest.
	HashHexLength = 64

	// LedgerSchemaVersion is the current ledger.json envelope schema version.
	LedgerSchemaVersion = 1

	// CertificateSchemaVersion is the current certificate schema version.
	CertificateSchemaVersion = 1

	// HashFieldSeparator joins fields before hashing or signing. The
	// separator is part of the wire-stable hash definition and must never
	// change once certificates exist.
	HashFieldSeparator = "|"
)

// Lock acquisition settings for ledger file access.
const (
	// LockRetryInterval is the delay between lock acquisition attempts.
	LockRetryInterval = 50 * time.Millisecond

	// DefaultLockTimeout is the default maximum wait for the ledger lock.
	DefaultLockTimeout = 5 * time.Second
)

// Watch mode settings.
const (
	// DefaultWatchInterval is the default refresh interval for watch mode.
	DefaultWatchInterval = 2 * time.Second

	// DefaultWatchTail is the default number of recent certificates shown
	// by watch mode.
	DefaultWatchTail = 15
)

// Log rotation settings for the CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files to retain.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age in days of a rotated file.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated files.
	LogCompress = true
)

// Time formats used in human-readable output.
const (
	// TimeFormatISO is used for header comments and display timestamps.
	TimeFormatISO = "2006-01-02 15:04:05 MST"
)
