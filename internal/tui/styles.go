// Package tui provides terminal user interface components for SIGIL.
//
// This package provides a centralized style system using Lip Gloss for consistent
// TUI component styling. All colors use AdaptiveColor for light/dark terminal support.
//
// # Semantic Colors
//
// Five semantic colors are exported for use across TUI components:
//   - ColorPrimary (Blue): Active states, links, primary actions
//   - ColorSuccess (Green): Success states, intact chains, valid signatures
//   - ColorWarning (Yellow): Warning states, attention required
//   - ColorError (Red): Error states, broken chains, invalid signatures
//   - ColorMuted (Gray): Dim/inactive states, secondary text
//
// # Status Icons
//
// Triple redundancy is maintained for all status displays: icon + color + text.
// See RiskTierIcon and ChainStatusIcon for icon mappings.
//
// # NO_COLOR Support
//
// Call CheckNoColor() at the start of commands to respect the NO_COLOR environment
// variable. Colors are also disabled when TERM=dumb.
package tui

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrz1836/sigil/internal/domain"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states, links, and primary actions.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for success states, intact chains, and valid signatures.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for warning states and attention-required items.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for error states, broken chains, and invalid signatures.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for dim/inactive states and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim/faint formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleUnderline applies underline formatting to text.
	StyleUnderline = lipgloss.NewStyle().Underline(true)

	// titleCaser converts lowercase identifiers into display labels.
	titleCaser = cases.Title(language.English)
)

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
	}
}

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles using AdaptiveColor for light/dark terminal support.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or TERM=dumb.
// This follows the NO_COLOR standard: https://no-color.org/
func HasColorSupport() bool {
	// NO_COLOR spec: if NO_COLOR exists in the environment (with any value,
	// including empty), color should be disabled.
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	return true
}

// RiskTierColors returns the semantic color definitions for risk tiers.
// Uses AdaptiveColor for light/dark terminal support.
func RiskTierColors() map[domain.RiskTier]lipgloss.AdaptiveColor {
	return map[domain.RiskTier]lipgloss.AdaptiveColor{
		domain.RiskTierLow:    ColorSuccess,
		domain.RiskTierMedium: ColorWarning,
		domain.RiskTierHigh:   ColorError,
	}
}

// RiskTierIcon returns the icon/symbol for a given risk tier.
// Used for visual indicators in certificate displays.
func RiskTierIcon(tier domain.RiskTier) string {
	icons := map[domain.RiskTier]string{
		domain.RiskTierLow:    "○",
		domain.RiskTierMedium: "◐",
		domain.RiskTierHigh:   "●",
	}
	if icon, ok := icons[tier]; ok {
		return icon
	}
	return "?"
}

// RiskTierLabel returns the display label for a risk tier ("low" becomes "Low").
func RiskTierLabel(tier domain.RiskTier) string {
	return titleCaser.String(string(tier))
}

// FormatRiskTier formats a risk tier with icon, color, and label for
// triple redundancy (icon + color + text).
func FormatRiskTier(tier domain.RiskTier) string {
	icon := RiskTierIcon(tier)
	label := RiskTierLabel(tier)
	color, ok := RiskTierColors()[tier]
	if !ok {
		return icon + " " + label
	}
	return icon + " " + lipgloss.NewStyle().Foreground(color).Render(label)
}

// FormatRiskTierPlain formats a risk tier without ANSI codes.
// Used for JSON output and width calculations.
func FormatRiskTierPlain(tier domain.RiskTier) string {
	return RiskTierIcon(tier) + " " + RiskTierLabel(tier)
}

// ChainStatusIcon returns the icon for a chain verification result.
func ChainStatusIcon(intact bool) string {
	if intact {
		return "✓"
	}
	return "✗"
}

// FormatChainStatus formats a chain verification summary with icon and color.
func FormatChainStatus(intact bool, summary string) string {
	icon := ChainStatusIcon(intact)
	style := lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	if !intact {
		style = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	}
	return style.Render(icon + " " + summary)
}

// stripANSI removes ANSI escape codes from a string.
// Used to calculate visible character count (excluding color codes).
// Handles both CSI sequences (\x1b[...letter) and OSC sequences (\x1b]...ST).
func stripANSI(s string) string {
	var result strings.Builder
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		if newI := trySkipANSI(runes, i); newI != i {
			i = newI
			continue
		}
		result.WriteRune(runes[i])
		i++
	}
	return result.String()
}

// trySkipANSI attempts to skip an ANSI escape sequence starting at position i.
// Returns the new position after the sequence, or i if no sequence was found.
func trySkipANSI(runes []rune, i int) int {
	if i >= len(runes) || runes[i] != '\x1b' || i+1 >= len(runes) {
		return i
	}

	next := runes[i+1]
	if next == '[' {
		return skipCSISequence(runes, i)
	}
	if next == ']' {
		return skipOSCSequence(runes, i)
	}
	return i
}

// skipCSISequence skips a CSI sequence: \x1b[...letter
func skipCSISequence(runes []rune, i int) int {
	i += 2 // skip \x1b[
	for i < len(runes) {
		c := runes[i]
		i++
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			break // CSI sequence ends with a letter
		}
	}
	return i
}

// skipOSCSequence skips an OSC sequence: \x1b]...ST (where ST is \x1b\\ or \x07)
func skipOSCSequence(runes []rune, i int) int {
	i += 2 // skip \x1b]
	for i < len(runes) {
		c := runes[i]
		if c == '\x07' {
			i++ // skip BEL terminator
			break
		}
		if c == '\x1b' && i+1 < len(runes) && runes[i+1] == '\\' {
			i += 2 // skip ST (\x1b\\)
			break
		}
		i++
	}
	return i
}

// padRight pads a string to the right to reach the target width.
// Uses visible character count (excluding ANSI escape codes) for proper width calculation.
func padRight(s string, width int) string {
	visible := stripANSI(s)
	runeCount := utf8.RuneCountInString(visible)
	if runeCount >= width {
		// Truncate to width runes (not bytes)
		runes := []rune(s)
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-runeCount)
}

// DefaultTerminalWidth is used when terminal width cannot be determined.
const DefaultTerminalWidth = 80

// TerminalWidth returns the current terminal width.
// Returns DefaultTerminalWidth if detection fails (assume standard terminal).
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return DefaultTerminalWidth
	}
	return width
}
