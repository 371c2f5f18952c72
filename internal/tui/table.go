// Package tui provides terminal user interface components for SIGIL.
package tui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrz1836/sigil/internal/domain"
)

// TableColumn defines a column in a table.
type TableColumn struct {
	Name  string
	Width int
	Align Alignment
}

// Alignment defines text alignment in a column.
type Alignment int

// Alignment constants.
const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// Table provides styled table rendering with fixed column widths.
type Table struct {
	w       io.Writer
	styles  *TableStyles
	columns []TableColumn
}

// NewTable creates a new table with the given columns.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	return &Table{
		w:       w,
		styles:  NewTableStyles(),
		columns: columns,
	}
}

// WriteHeader writes the table header row.
func (t *Table) WriteHeader() {
	header := ""
	for i, col := range t.columns {
		if i > 0 {
			header += " "
		}
		format := t.formatSpec(col)
		header += fmt.Sprintf(format, col.Name)
	}
	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(header))
}

// WriteRow writes a data row to the table.
func (t *Table) WriteRow(values ...string) {
	row := ""
	for i, col := range t.columns {
		if i > 0 {
			row += " "
		}
		format := t.formatSpec(col)
		value := ""
		if i < len(values) {
			value = values[i]
		}
		// Truncate if needed (require Width > 1 to avoid slice bounds panic)
		if col.Width > 1 && len(value) > col.Width {
			value = value[:col.Width-1] + "…"
		}
		row += fmt.Sprintf(format, value)
	}
	_, _ = fmt.Fprintln(t.w, row)
}

// WriteStyledRow writes a data row with one styled cell.
// The styled cell's width is adjusted for the invisible ANSI escape codes.
func (t *Table) WriteStyledRow(values []string, styledIndex int, styledValue, plainValue string) {
	row := ""
	for i, col := range t.columns {
		if i > 0 {
			row += " "
		}

		if i == styledIndex {
			offset := ColorOffset(styledValue, plainValue)
			adjustedFormat := t.formatSpecWithOffset(col, offset)
			row += fmt.Sprintf(adjustedFormat, styledValue)
			continue
		}

		format := t.formatSpec(col)
		value := ""
		if i < len(values) {
			value = values[i]
		}
		if col.Width > 1 && len(value) > col.Width {
			value = value[:col.Width-1] + "…"
		}
		row += fmt.Sprintf(format, value)
	}
	_, _ = fmt.Fprintln(t.w, row)
}

// formatSpec returns the format specifier for a column.
func (t *Table) formatSpec(col TableColumn) string {
	switch col.Align {
	case AlignRight:
		return fmt.Sprintf("%%%ds", col.Width)
	case AlignLeft, AlignCenter:
		return fmt.Sprintf("%%-%ds", col.Width)
	default:
		return fmt.Sprintf("%%-%ds", col.Width)
	}
}

// formatSpecWithOffset returns the format specifier with width adjusted for ANSI codes.
func (t *Table) formatSpecWithOffset(col TableColumn, offset int) string {
	width := col.Width + offset
	switch col.Align {
	case AlignRight:
		return fmt.Sprintf("%%%ds", width)
	case AlignLeft, AlignCenter:
		return fmt.Sprintf("%%-%ds", width)
	default:
		return fmt.Sprintf("%%-%ds", width)
	}
}

// ColorOffset calculates the difference in visible vs actual length due to ANSI codes.
func ColorOffset(rendered, plain string) int {
	return len(rendered) - len(plain)
}

// ========================================
// CertificateTable - Ledger Display
// ========================================

// ShortIDLength is the number of id characters shown in table rows.
const ShortIDLength = 8

// ShortHashLength is the number of hash characters shown in table rows.
const ShortHashLength = 12

// ShortID abbreviates a certificate id for display.
func ShortID(id string) string {
	if utf8.RuneCountInString(id) <= ShortIDLength {
		return id
	}
	return string([]rune(id)[:ShortIDLength])
}

// ShortHash abbreviates a hex hash for display.
func ShortHash(h string) string {
	if utf8.RuneCountInString(h) <= ShortHashLength {
		return h
	}
	return string([]rune(h)[:ShortHashLength])
}

// CertificateRow represents one row in the certificate table.
type CertificateRow struct {
	ID        string
	Created   string
	RiskTier  domain.RiskTier
	Connector string
	Hash      string
}

// connectorLabel formats the connector identity for display.
// Returns an en-dash when the execution ran without a connector.
func connectorLabel(cert *domain.Certificate) string {
	if cert.ConnectorID == "" {
		return "–"
	}
	if cert.ConnectorVersion == "" {
		return cert.ConnectorID
	}
	return cert.ConnectorID + "@" + cert.ConnectorVersion
}

// BuildCertificateRows converts certificates into display rows,
// abbreviating ids and hashes and humanizing timestamps.
func BuildCertificateRows(certs []*domain.Certificate) []CertificateRow {
	rows := make([]CertificateRow, 0, len(certs))
	for _, cert := range certs {
		rows = append(rows, CertificateRow{
			ID:        ShortID(cert.ID),
			Created:   RelativeTime(cert.Timestamp),
			RiskTier:  cert.RiskTier,
			Connector: connectorLabel(cert),
			Hash:      ShortHash(cert.CertificateHash),
		})
	}
	return rows
}

// certificateColumnMinWidths are the minimum widths for certificate table columns.
//
//nolint:gochecknoglobals // Intentional package-level constant for table minimum widths
var certificateColumnMinWidths = []int{ShortIDLength, 12, 10, 12, ShortHashLength}

// CertificateTable renders certificates in a formatted table.
// Supports both TTY rendering and plain data extraction for Output.Table.
type CertificateTable struct {
	rows   []CertificateRow
	styles *TableStyles
}

// NewCertificateTable creates a certificate table from display rows.
func NewCertificateTable(rows []CertificateRow) *CertificateTable {
	return &CertificateTable{
		rows:   rows,
		styles: NewTableStyles(),
	}
}

// Headers returns the column headers.
func (t *CertificateTable) Headers() []string {
	return []string{"ID", "CREATED", "RISK", "CONNECTOR", "HASH"}
}

// ToTableData converts the table to Output.Table() compatible format.
// Cells are plain text without ANSI codes.
func (t *CertificateTable) ToTableData() ([]string, [][]string) {
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		rows[i] = []string{
			row.ID,
			row.Created,
			FormatRiskTierPlain(row.RiskTier),
			row.Connector,
			row.Hash,
		}
	}
	return t.Headers(), rows
}

// Render writes the formatted table with a styled risk tier column.
func (t *CertificateTable) Render(w io.Writer) error {
	headers := t.Headers()
	widths := t.calculateColumnWidths()

	headerParts := make([]string, len(headers))
	for i, h := range headers {
		headerParts[i] = t.styles.Header.Render(padRight(h, widths[i]))
	}
	if _, err := fmt.Fprintln(w, strings.Join(headerParts, "  ")); err != nil {
		return err
	}

	for _, row := range t.rows {
		cells := []string{
			padRight(row.ID, widths[0]),
			padRight(row.Created, widths[1]),
			t.renderRiskCellPadded(row.RiskTier, widths[2]),
			padRight(row.Connector, widths[3]),
			t.styles.Dim.Render(padRight(row.Hash, widths[4])),
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "  ")); err != nil {
			return err
		}
	}

	return nil
}

// calculateColumnWidths sizes each column from header and content widths.
func (t *CertificateTable) calculateColumnWidths() []int {
	headers := t.Headers()
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(certificateColumnMinWidths[i], utf8.RuneCountInString(h))
	}

	for _, row := range t.rows {
		cells := []string{
			row.ID,
			row.Created,
			FormatRiskTierPlain(row.RiskTier),
			row.Connector,
			row.Hash,
		}
		for i, cell := range cells {
			if w := utf8.RuneCountInString(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	return widths
}

// renderRiskCellPadded renders the risk tier cell with proper padding.
// Padding is calculated based on visible character width (excluding ANSI codes).
func (t *CertificateTable) renderRiskCellPadded(tier domain.RiskTier, width int) string {
	plain := FormatRiskTierPlain(tier)
	styled := FormatRiskTier(tier)

	plainWidth := utf8.RuneCountInString(plain)
	if plainWidth >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-plainWidth)
}

// RenderKeyValues writes aligned key/value detail lines, dimming the keys.
// Used by detail views that show a single certificate.
func RenderKeyValues(w io.Writer, pairs [][2]string) {
	keyWidth := 0
	for _, p := range pairs {
		if l := utf8.RuneCountInString(p[0]); l > keyWidth {
			keyWidth = l
		}
	}

	dim := lipgloss.NewStyle().Foreground(ColorMuted)
	for _, p := range pairs {
		_, _ = fmt.Fprintf(w, "%s  %s\n", dim.Render(padRight(p[0], keyWidth)), p[1])
	}
}
