// Package tui provides terminal user interface components for SIGIL.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/domain"
)

// WatchConfig holds configuration for the watch mode.
type WatchConfig struct {
	// Interval is the refresh interval for watch mode.
	Interval time.Duration
	// Tail is the number of most recent certificates displayed.
	Tail int
	// BellEnabled controls whether the terminal bell rings when the
	// chain transitions from intact to broken.
	BellEnabled bool
	// Quiet suppresses the header line.
	Quiet bool
}

// DefaultWatchConfig returns the default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		Interval:    constants.DefaultWatchInterval,
		Tail:        constants.DefaultWatchTail,
		BellEnabled: true,
		Quiet:       false,
	}
}

// LedgerReader is the read-only ledger access watch mode needs.
type LedgerReader interface {
	All(ctx context.Context) ([]*domain.Certificate, error)
	VerifyChain(ctx context.Context) (*domain.ChainReport, error)
}

// WatchModel is the Bubble Tea model for watch mode.
// It implements the tea.Model interface (Init, Update, View).
type WatchModel struct {
	// Most recent certificates, oldest first (ledger tail)
	rows []CertificateRow
	// Latest chain verification result
	report *domain.ChainReport
	// Total certificates in the ledger
	total int
	// Whether the chain was intact on the previous refresh
	previousIntact *bool
	// Last refresh timestamp
	lastUpdate time.Time
	// Configuration
	config WatchConfig
	// Terminal dimensions
	width, height int
	// Exit flag
	quitting bool
	// Error from last refresh
	err error
	// Refresh activity indicator
	spin spinner.Model
	// Dependencies
	reader LedgerReader
	// baseCtx is stored for use in async Bubble Tea commands.
	// Storing context in structs is generally discouraged, but Bubble Tea's
	// async command model requires it for proper context propagation.
	baseCtx context.Context //nolint:containedctx // Required for Bubble Tea async commands
}

// TickMsg signals time for a refresh.
type TickMsg time.Time

// RefreshMsg carries new data from a refresh operation.
type RefreshMsg struct {
	Rows   []CertificateRow
	Report *domain.ChainReport
	Total  int
	Err    error
}

// BellMsg signals that a bell was emitted.
type BellMsg struct{}

// NewWatchModel creates a new WatchModel with the given dependencies.
// The context is stored for use in async Bubble Tea commands.
func NewWatchModel(ctx context.Context, reader LedgerReader, cfg WatchConfig) *WatchModel {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return &WatchModel{
		rows:       nil,
		report:     nil,
		lastUpdate: time.Time{},
		config:     cfg,
		width:      DefaultTerminalWidth,
		height:     24,
		quitting:   false,
		err:        nil,
		spin:       sp,
		reader:     reader,
		baseCtx:    ctx,
	}
}

// Init returns the initial command to run when the program starts.
// It starts the refresh timer, the spinner, and an initial data load.
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(
		m.refreshData(),
		m.tick(),
		m.spin.Tick,
	)
}

// Update handles messages and returns the updated model and any commands.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case TickMsg:
		return m, m.refreshData()

	case RefreshMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, m.tick()
		}
		m.rows = msg.Rows
		m.report = msg.Report
		m.total = msg.Total
		m.lastUpdate = time.Now()
		m.err = nil

		bellCmd := m.checkForBell()
		return m, tea.Batch(m.tick(), bellCmd)

	case BellMsg:
		// Bell is emitted in the command, nothing to do here
		return m, nil
	}

	return m, nil
}

// View renders the current state to a string.
func (m *WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	if !m.config.Quiet {
		b.WriteString(m.spin.View())
		b.WriteString(" ")
		b.WriteString(StyleBold.Render("SIGIL ledger"))
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(fmt.Sprintf("Error: %v\n", m.err))
	}

	if m.report != nil {
		b.WriteString(FormatChainStatus(m.report.Intact, m.report.Summary))
		b.WriteString("\n\n")
	}

	if len(m.rows) == 0 {
		b.WriteString("No certificates. Run 'sigil record' to create one.\n")
	} else {
		table := NewCertificateTable(m.rows)
		_ = table.Render(&b)
	}

	if !m.config.Quiet {
		b.WriteString("\n")
		b.WriteString(m.buildFooter())
		b.WriteString("\n")
	}

	if !m.lastUpdate.IsZero() {
		b.WriteString(fmt.Sprintf("\nLast updated: %s", m.lastUpdate.Format("15:04:05")))
	}
	b.WriteString("\nPress 'q' to quit")

	return b.String()
}

// Rows returns the current display rows (useful for testing).
func (m *WatchModel) Rows() []CertificateRow {
	return m.rows
}

// Report returns the latest chain report.
func (m *WatchModel) Report() *domain.ChainReport {
	return m.report
}

// LastUpdate returns the last update timestamp.
func (m *WatchModel) LastUpdate() time.Time {
	return m.lastUpdate
}

// IsQuitting returns true if the model is in quitting state.
func (m *WatchModel) IsQuitting() bool {
	return m.quitting
}

// Error returns the last error from a refresh operation.
func (m *WatchModel) Error() error {
	return m.err
}

// tick returns a command that sends a TickMsg after the configured interval.
func (m *WatchModel) tick() tea.Cmd {
	return tea.Tick(m.config.Interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// refreshData loads fresh data from the ledger.
func (m *WatchModel) refreshData() tea.Cmd {
	return func() tea.Msg {
		ctx := m.baseCtx
		if ctx == nil {
			ctx = context.Background()
		}

		certs, err := m.reader.All(ctx)
		if err != nil {
			return RefreshMsg{Err: fmt.Errorf("failed to read ledger: %w", err)}
		}

		report, err := m.reader.VerifyChain(ctx)
		if err != nil {
			return RefreshMsg{Err: fmt.Errorf("failed to verify chain: %w", err)}
		}

		tail := certs
		if m.config.Tail > 0 && len(certs) > m.config.Tail {
			tail = certs[len(certs)-m.config.Tail:]
		}

		return RefreshMsg{
			Rows:   BuildCertificateRows(tail),
			Report: report,
			Total:  len(certs),
		}
	}
}

// checkForBell rings the terminal bell when the chain newly breaks.
// Returns nil when the chain is intact, still broken from before, or
// bells are disabled.
func (m *WatchModel) checkForBell() tea.Cmd {
	if m.report == nil {
		return nil
	}

	intact := m.report.Intact
	wasIntact := m.previousIntact
	m.previousIntact = &intact

	if !m.config.BellEnabled || m.config.Quiet {
		return nil
	}

	// Bell only on the transition into a broken state
	if !intact && (wasIntact == nil || *wasIntact) {
		return emitBell()
	}

	return nil
}

// emitBell returns a command that emits a terminal bell.
func emitBell() tea.Cmd {
	return func() tea.Msg {
		// Write BEL character directly to stdout to avoid forbidigo lint rule
		_, _ = os.Stdout.WriteString("\a")
		return BellMsg{}
	}
}

// buildFooter creates the certificate count summary line.
func (m *WatchModel) buildFooter() string {
	certWord := "certificates"
	if m.total == 1 {
		certWord = "certificate"
	}
	summary := fmt.Sprintf("%d %s", m.total, certWord)

	if m.total > len(m.rows) && len(m.rows) > 0 {
		summary += fmt.Sprintf(", showing last %d", len(m.rows))
	}

	return summary
}
