package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrz1836/sigil/internal/ctxutil"
	"github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/tui"
)

// purgeConfirmWord is what the user must type to confirm a purge.
const purgeConfirmWord = "purge"

// formRunner abstracts huh form execution for testing.
type formRunner interface {
	Run() error
}

// terminalCheck reports whether stdin is attached to a terminal.
// It can be overridden in tests to simulate terminal detection.
//
//nolint:gochecknoglobals // Required for test injection of terminal detection
var terminalCheck = isTerminal

// isTerminal checks if stdin is a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// createPurgeConfirmForm creates the type-to-confirm form for purging the ledger.
// It can be overridden in tests to simulate user input.
//
//nolint:gochecknoglobals // Test injection point - standard Go testing pattern
var createPurgeConfirmForm = defaultCreatePurgeConfirmForm

// defaultCreatePurgeConfirmForm builds the interactive purge confirmation.
func defaultCreatePurgeConfirmForm(count int, answer *string) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Purge all %d certificates?", count)).
				Description(fmt.Sprintf("This wipes the entire ledger and cannot be undone. Type %q to confirm.", purgeConfirmWord)).
				Placeholder(purgeConfirmWord).
				Validate(func(s string) error {
					if s != purgeConfirmWord {
						return fmt.Errorf("type %q to confirm", purgeConfirmWord)
					}
					return nil
				}).
				Value(answer),
		),
	)
}

// AddPurgeCommand adds the purge command to the root command.
func AddPurgeCommand(root *cobra.Command) {
	root.AddCommand(newPurgeCmd())
}

// newPurgeCmd creates the purge command.
func newPurgeCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Wipe the entire ledger",
		Long: `Remove every certificate from the ledger. The hash chain makes partial
deletion detectable, so the only supported removal is wiping the whole
ledger. The signing key is kept.

Without --force the command asks for type-to-confirm on a terminal and
refuses to run non-interactively.

Exit codes:
  0  ledger purged (or nothing to purge)
  1  purge failed or confirmation unavailable

Examples:
  sigil purge
  sigil purge --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runPurge(cmd.Context(), cmd, os.Stdout, force)
			if stderrors.Is(err, errors.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip the confirmation prompt")

	return cmd
}

// purgeResult is the JSON output for the purge command.
type purgeResult struct {
	Status  string `json:"status"`
	Removed int    `json:"removed"`
}

// runPurge executes the purge command.
func runPurge(ctx context.Context, cmd *cobra.Command, w io.Writer, force bool) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	tui.CheckNoColor()

	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return handlePurgeError(outputFormat, w, err)
	}
	store := ec.Store()

	count, err := store.Count(ctx)
	if err != nil {
		return handlePurgeError(outputFormat, w, err)
	}

	out := tui.NewOutput(w, outputFormat)

	if count == 0 {
		if outputFormat == OutputJSON {
			return out.JSON(purgeResult{Status: "empty", Removed: 0})
		}
		out.Info("Ledger is already empty.")
		return nil
	}

	if !force {
		if !terminalCheck() {
			return handlePurgeError(outputFormat, w, errors.ErrNonInteractiveMode)
		}

		var answer string
		if formErr := createPurgeConfirmForm(count, &answer).Run(); formErr != nil {
			if stderrors.Is(formErr, huh.ErrUserAborted) {
				out.Info("Purge canceled.")
				return nil
			}
			return handlePurgeError(outputFormat, w, formErr)
		}
	}

	if err = store.Purge(ctx); err != nil {
		return handlePurgeError(outputFormat, w, err)
	}

	logger.Info().
		Int("removed", count).
		Str("ledger", store.Path()).
		Msg("ledger purged")

	if outputFormat == OutputJSON {
		return out.JSON(purgeResult{Status: "purged", Removed: count})
	}

	out.Success(fmt.Sprintf("purged %d certificates", count))
	return nil
}

// handlePurgeError reports a purge error in the requested format.
func handlePurgeError(format string, w io.Writer, err error) error {
	if format == OutputJSON {
		tui.NewOutput(w, format).Error(err)
		return errors.ErrJSONErrorOutput
	}
	if stderrors.Is(err, errors.ErrNonInteractiveMode) {
		return tui.NewActionableError(err.Error(), "Run: sigil purge --force")
	}
	return err
}
