// Package tui provides terminal user interface components for SIGIL.
package tui

import "io"

// Output provides methods for structured output to a terminal.
// Two implementations exist: TTYOutput for styled human-readable output
// and JSONOutput for machine-readable output.
type Output interface {
	// Success prints a success message.
	Success(msg string)
	// Error prints an error message.
	Error(err error)
	// Warning prints a warning message.
	Warning(msg string)
	// Info prints an informational message.
	Info(msg string)
	// Table outputs tabular data with aligned columns.
	Table(headers []string, rows [][]string)
	// JSON outputs a value as formatted JSON.
	JSON(v any) error
}

// NewOutput creates the appropriate output based on format.
// "json" selects JSONOutput; everything else gets styled TTY output.
func NewOutput(w io.Writer, format string) Output {
	if format == "json" {
		return NewJSONOutput(w)
	}
	return NewTTYOutput(w)
}
