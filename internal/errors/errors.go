// Package errors provides centralized error handling for SIGIL.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrKeystoreUnavailable indicates that no usable signing key or keystore
	// exists. Certificate creation must fail closed when this is returned.
	ErrKeystoreUnavailable = errors.New("keystore unavailable")

	// ErrSigningFailure indicates that the sign operation itself failed even
	// though a keystore was available.
	ErrSigningFailure = errors.New("signing failed")

	// ErrKeyMismatch indicates that persisted key material does not round-trip
	// to the same public key, suggesting corruption or tampering.
	ErrKeyMismatch = errors.New("key material mismatch")

	// ErrCertificateNotFound indicates the requested certificate id does not
	// exist in the ledger.
	ErrCertificateNotFound = errors.New("certificate not found")

	// ErrLedgerCorrupt indicates the ledger file is unreadable or unparseable.
	// A tampered-but-parseable ledger is NOT corrupt; it is reported as a
	// broken chain by verification instead.
	ErrLedgerCorrupt = errors.New("ledger corrupted")

	// ErrChainTipMismatch indicates an append carried a previous-certificate
	// hash that no longer matches the ledger tip. The append is rejected.
	ErrChainTipMismatch = errors.New("chain tip mismatch")

	// ErrInvalidInput indicates a certificate input failed validation before
	// any hashing or signing took place.
	ErrInvalidInput = errors.New("invalid certificate input")

	// ErrInvalidCertificate indicates a certificate failed structural
	// validation (malformed hashes, unknown risk tier, bad id).
	ErrInvalidCertificate = errors.New("invalid certificate")

	// ErrLockTimeout indicates the ledger lock could not be acquired within
	// the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigNotFound indicates that the configuration file was not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalidLedger indicates an invalid ledger configuration value.
	ErrConfigInvalidLedger = errors.New("invalid ledger configuration")

	// ErrConfigInvalidKeystore indicates an invalid keystore configuration value.
	ErrConfigInvalidKeystore = errors.New("invalid keystore configuration")

	// ErrConfigInvalidLogging indicates an invalid logging configuration value.
	ErrConfigInvalidLogging = errors.New("invalid logging configuration")

	// ErrConfigInvalidWatch indicates an invalid watch configuration value.
	ErrConfigInvalidWatch = errors.New("invalid watch configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrInvalidArgument indicates that an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrNonInteractiveMode indicates that an operation requiring confirmation
	// was attempted in non-interactive mode without the force flag.
	ErrNonInteractiveMode = errors.New("use --force in non-interactive mode")

	// ErrOperationCanceled indicates the user canceled an operation.
	ErrOperationCanceled = errors.New("operation canceled by user")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	// Commands should silence cobra's error printing when this is returned.
	ErrJSONErrorOutput = errors.New("error output as JSON")

	// ErrWatchModeJSONUnsupported indicates that watch mode does not support JSON output.
	ErrWatchModeJSONUnsupported = errors.New("watch mode does not support JSON output")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
// Verification commands use this to distinguish "ran fine, found problems"
// from operational failures.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
