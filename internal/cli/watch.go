package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil/internal/ctxutil"
	"github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/tui"
)

// programRunner abstracts Bubble Tea program execution for testing.
type programRunner interface {
	Run() (tea.Model, error)
}

// createWatchProgram builds the Bubble Tea program for watch mode.
// It can be overridden in tests to avoid driving a real terminal.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var createWatchProgram = defaultCreateWatchProgram

// defaultCreateWatchProgram runs the watch model against the real terminal.
func defaultCreateWatchProgram(ctx context.Context, model tea.Model, w io.Writer) programRunner {
	return tea.NewProgram(model, tea.WithContext(ctx), tea.WithOutput(w))
}

// AddWatchCommand adds the watch command to the root command.
func AddWatchCommand(root *cobra.Command) {
	root.AddCommand(newWatchCmd())
}

// newWatchCmd creates the watch command.
func newWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		tail     int
		noBell   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live dashboard of the ledger tail and chain status",
		Long: `Poll the ledger and render a live view of the most recent certificates
and the chain verification status. The terminal bell rings when the
chain transitions from intact to broken, unless --no-bell is set.

Watch mode is interactive and has no JSON form; use 'sigil list -o json'
for machine-readable output. Press q or ctrl+c to quit.

Exit codes:
  0  watch exited normally
  1  ledger unreadable or terminal failure
  2  JSON output requested

Examples:
  sigil watch
  sigil watch --interval 5s --tail 30
  sigil watch --no-bell -q`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runWatch(cmd.Context(), cmd, os.Stdout, interval, tail, noBell)
			if stderrors.Is(err, errors.ErrJSONErrorOutput) || errors.IsExitCode2Error(err) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "refresh interval (default from config)")
	cmd.Flags().IntVar(&tail, "tail", 0, "number of recent certificates to display (default from config)")
	cmd.Flags().BoolVar(&noBell, "no-bell", false, "disable the bell on chain breaks")

	return cmd
}

// runWatch executes the watch command.
func runWatch(ctx context.Context, cmd *cobra.Command, w io.Writer, interval time.Duration, tail int, noBell bool) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	quiet := cmd.Flag("quiet").Value.String() == "true"
	tui.CheckNoColor()

	if outputFormat == OutputJSON {
		tui.NewOutput(w, outputFormat).Error(errors.ErrWatchModeJSONUnsupported)
		return errors.NewExitCode2Error(errors.ErrJSONErrorOutput)
	}

	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return err
	}

	cfg := tui.DefaultWatchConfig()
	cfg.Interval = ec.Config.Watch.Interval
	cfg.Tail = ec.Config.Watch.Tail
	cfg.Quiet = quiet
	if cmd.Flags().Changed("interval") {
		cfg.Interval = interval
	}
	if cmd.Flags().Changed("tail") {
		cfg.Tail = tail
	}
	if noBell {
		cfg.BellEnabled = false
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("%w: watch interval must be positive", errors.ErrInvalidInput)
	}
	if cfg.Tail <= 0 {
		return fmt.Errorf("%w: watch tail must be positive", errors.ErrInvalidInput)
	}

	logger.Debug().
		Dur("interval", cfg.Interval).
		Int("tail", cfg.Tail).
		Msg("watch mode started")

	model := tui.NewWatchModel(ctx, ec.Store(), cfg)
	if _, err = createWatchProgram(ctx, model, w).Run(); err != nil {
		// Context cancellation (ctrl+c via the signal handler) is a
		// normal way to leave watch mode.
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("watch mode failed: %w", err)
	}

	return nil
}
