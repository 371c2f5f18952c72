// Package cli provides the command-line interface for sigil.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil/internal/ctxutil"
	"github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/tui"
)

// AddListCommand adds the list command to the root command.
func AddListCommand(root *cobra.Command) {
	root.AddCommand(newListCmd())
}

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List certificates in chain order",
		Long: `Display the ledger as a table (id, age, risk tier, connector, hash) in
chain order, oldest first. JSON output carries the full certificates.

Examples:
  sigil list               # Styled table
  sigil list --tail 20     # Only the 20 newest certificates
  sigil list -o json       # Full certificates as a JSON array
  sigil ls                 # Alias for list`,
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runList(cmd.Context(), cmd, os.Stdout, tail)
			if stderrors.Is(err, errors.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 0, "show only the N newest certificates (0 = all)")

	return cmd
}

// runList executes the list command.
func runList(ctx context.Context, cmd *cobra.Command, w io.Writer, tail int) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	tui.CheckNoColor()

	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return handleListError(outputFormat, w, err)
	}

	certs, err := ec.Store().All(ctx)
	if err != nil {
		logger.Debug().Err(err).Msg("failed to read ledger")
		return handleListError(outputFormat, w, err)
	}

	total := len(certs)
	if tail > 0 && total > tail {
		certs = certs[total-tail:]
	}

	// Handle empty case
	if len(certs) == 0 {
		if outputFormat == OutputJSON {
			_, _ = fmt.Fprintln(w, "[]")
		} else {
			_, _ = fmt.Fprintln(w, "No certificates. Run 'sigil record' to create one.")
		}
		return nil
	}

	if outputFormat == OutputJSON {
		return tui.NewOutput(w, outputFormat).JSON(certs)
	}

	table := tui.NewCertificateTable(tui.BuildCertificateRows(certs))
	if err := table.Render(w); err != nil {
		return fmt.Errorf("failed to render certificate table: %w", err)
	}

	if tail > 0 && total > tail {
		_, _ = fmt.Fprintf(w, "\n%d certificates, showing last %d\n", total, len(certs))
	}

	return nil
}

// handleListError reports the error in the requested format.
func handleListError(format string, w io.Writer, err error) error {
	if format == OutputJSON {
		tui.NewOutput(w, format).Error(err)
		return errors.ErrJSONErrorOutput
	}
	return err
}
