package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Signing & Keys
	// ===================
	{
		err: ErrKeystoreUnavailable,
		info: ErrorInfo{
			Message: "No usable signing keystore was found.",
			Action:  "Run 'sigil key init' to generate the device signing key.",
		},
	},
	{
		err: ErrSigningFailure,
		info: ErrorInfo{
			Message: "The signing operation failed. The execution was NOT certified.",
			Action:  "Check 'sigil key fingerprint' and the log file, then retry the recording.",
		},
	},
	{
		err: ErrKeyMismatch,
		info: ErrorInfo{
			Message: "The stored key material is inconsistent and cannot be trusted.",
			Action:  "Inspect ~/.sigil/keys; restore the key file from backup if available.",
		},
	},

	// ===================
	// Ledger
	// ===================
	{
		err: ErrCertificateNotFound,
		info: ErrorInfo{
			Message: "The specified certificate was not found in the ledger.",
			Action:  "Run 'sigil list' to see recorded certificates.",
		},
	},
	{
		err: ErrLedgerCorrupt,
		info: ErrorInfo{
			Message: "The ledger file could not be parsed.",
			Action:  "Inspect ~/.sigil/ledger/ledger.json; restore from backup if available.",
		},
	},
	{
		err: ErrChainTipMismatch,
		info: ErrorInfo{
			Message: "The ledger changed while the certificate was being built. Nothing was appended.",
			Action:  "Retry the recording; if it persists, run 'sigil verify'.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Could not acquire the ledger lock. Another process may be using it.",
			Action:  "Wait and try again, or check for stuck sigil processes.",
		},
	},
	{
		err: ErrInvalidInput,
		info: ErrorInfo{
			Message: "The certificate input is incomplete or invalid.",
			Action:  "Check the input document against 'sigil record --help'.",
		},
	},
	{
		err: ErrInvalidCertificate,
		info: ErrorInfo{
			Message: "The certificate is structurally invalid.",
			Action:  "Run 'sigil verify' to check ledger integrity.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNotFound,
		info: ErrorInfo{
			Message: "Configuration file not found.",
			Action:  "Run 'sigil init' to create the default configuration.",
		},
	},
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is not loaded.",
			Action:  "Ensure ~/.sigil/config.yaml exists and is valid YAML.",
		},
	},
	{
		err: ErrConfigInvalidLedger,
		info: ErrorInfo{
			Message: "Invalid ledger configuration.",
			Action:  "Check the 'ledger' section in config.yaml for invalid values.",
		},
	},
	{
		err: ErrConfigInvalidKeystore,
		info: ErrorInfo{
			Message: "Invalid keystore configuration.",
			Action:  "Check the 'keystore' section in config.yaml for invalid values.",
		},
	},
	{
		err: ErrConfigInvalidWatch,
		info: ErrorInfo{
			Message: "Invalid watch configuration.",
			Action:  "Check the 'watch' section in config.yaml for invalid values.",
		},
	},

	// ===================
	// User Interaction
	// ===================
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation was canceled.",
			Action:  "",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "This operation requires confirmation in non-interactive mode.",
			Action:  "Use --force flag to skip confirmation.",
		},
	},
	{
		err: ErrInvalidArgument,
		info: ErrorInfo{
			Message: "An invalid argument was provided.",
			Action:  "Check the command help for valid arguments.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was not provided.",
			Action:  "Provide the required value and try again.",
		},
	},
	{
		err: ErrWatchModeJSONUnsupported,
		info: ErrorInfo{
			Message: "Watch mode renders an interactive display and cannot emit JSON.",
			Action:  "Use 'sigil list --output json' for machine-readable output.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
// Built once from errorInfoEntries during package initialization.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
// This is called once during package init for O(1) direct lookups.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	// Fast path: O(1) lookup for direct sentinel errors
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Slow path: errors.Is() for wrapped errors
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// This function maps sentinel errors to helpful, actionable messages
// that are suitable for display to end users.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
