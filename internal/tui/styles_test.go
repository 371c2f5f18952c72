// Package tui provides terminal user interface components for SIGIL.
package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrz1836/sigil/internal/domain"
)

func TestRiskTierIcon(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "○", RiskTierIcon(domain.RiskTierLow))
	assert.Equal(t, "◐", RiskTierIcon(domain.RiskTierMedium))
	assert.Equal(t, "●", RiskTierIcon(domain.RiskTierHigh))
	assert.Equal(t, "?", RiskTierIcon(domain.RiskTier("bogus")))
}

func TestRiskTierLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Low", RiskTierLabel(domain.RiskTierLow))
	assert.Equal(t, "Medium", RiskTierLabel(domain.RiskTierMedium))
	assert.Equal(t, "High", RiskTierLabel(domain.RiskTierHigh))
}

func TestRiskTierColors_CoversAllTiers(t *testing.T) {
	t.Parallel()

	colors := RiskTierColors()
	for _, tier := range []domain.RiskTier{domain.RiskTierLow, domain.RiskTierMedium, domain.RiskTierHigh} {
		_, ok := colors[tier]
		assert.True(t, ok, "missing color for tier %s", tier)
	}
}

func TestFormatRiskTierPlain(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "○ Low", FormatRiskTierPlain(domain.RiskTierLow))
	assert.Equal(t, "● High", FormatRiskTierPlain(domain.RiskTierHigh))
}

func TestFormatRiskTier_ContainsIconAndLabel(t *testing.T) {
	t.Parallel()

	got := FormatRiskTier(domain.RiskTierMedium)
	assert.Contains(t, got, "◐")
	assert.Contains(t, got, "Medium")
}

func TestChainStatusIcon(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "✓", ChainStatusIcon(true))
	assert.Equal(t, "✗", ChainStatusIcon(false))
}

func TestFormatChainStatus_ContainsIconAndSummary(t *testing.T) {
	t.Parallel()

	intact := FormatChainStatus(true, "chain intact: 3 certificates verified")
	assert.Contains(t, intact, "✓")
	assert.Contains(t, intact, "chain intact")

	broken := FormatChainStatus(false, "chain broken at index 1")
	assert.Contains(t, broken, "✗")
	assert.Contains(t, broken, "chain broken")
}

func TestHasColorSupport_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, HasColorSupport(), "NO_COLOR with any value disables color")
}

func TestHasColorSupport_DumbTerm(t *testing.T) {
	t.Setenv("TERM", "dumb")
	assert.False(t, HasColorSupport())
}

func TestStripANSI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello", "hello"},
		{"csi sequence", "\x1b[31mred\x1b[0m", "red"},
		{"osc with bel", "\x1b]8;;https://example.com\x07link\x1b]8;;\x07", "link"},
		{"unicode", "✓ done", "✓ done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, stripANSI(tt.in))
		})
	}
}

func TestPadRight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab   ", padRight("ab", 5))
	assert.Equal(t, "abcde", padRight("abcdef", 5), "longer strings are truncated to width")
	assert.Equal(t, "✓ ok ", padRight("✓ ok", 5), "width counts runes, not bytes")
}

func TestTerminalWidth_FallsBack(t *testing.T) {
	// Under `go test` stdout is typically not a terminal, so detection
	// falls back to the default width.
	width := TerminalWidth()
	assert.Positive(t, width)
}
