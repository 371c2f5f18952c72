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

// AddExportCommand adds the export command to the root command.
func AddExportCommand(root *cobra.Command) {
	root.AddCommand(newExportCmd())
}

// newExportCmd creates the export command.
func newExportCmd() *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a certificate as a self-contained bundle",
		Long: `Export one certificate as a portable JSON bundle that a third party can
verify without access to this machine: the certificate itself, the
signer's public key, and the hash chain proof from the genesis sentinel
up to the certificate.

The bundle goes to stdout unless --file is given.

Exit codes:
  0  bundle exported
  1  unknown id or unreadable ledger

Examples:
  sigil export 0193d2f4-5a6b-7c8d-9e0f-1a2b3c4d5e6f
  sigil export 0193d2f4-5a6b-7c8d-9e0f-1a2b3c4d5e6f --file audit.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runExport(cmd.Context(), cmd, os.Stdout, args[0], filePath)
			if stderrors.Is(err, errors.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "write the bundle to a file instead of stdout")

	return cmd
}

// exportResult is the JSON output for export when writing to a file.
type exportResult struct {
	Status        string `json:"status"`
	CertificateID string `json:"certificate_id"`
	Path          string `json:"path"`
}

// runExport executes the export command.
func runExport(ctx context.Context, cmd *cobra.Command, w io.Writer, id, filePath string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	tui.CheckNoColor()

	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return handleExportError(outputFormat, w, err)
	}

	data, err := ec.Exporter().ExportJSON(ctx, id)
	if err != nil {
		return handleExportError(outputFormat, w, err)
	}

	if filePath == "" {
		// The bundle is already JSON, so both output formats stream it as-is.
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if err = os.WriteFile(filePath, data, 0o600); err != nil {
		return handleExportError(outputFormat, w, fmt.Errorf("writing bundle: %w", err))
	}

	logger.Info().
		Str("certificate_id", id).
		Str("path", filePath).
		Msg("certificate exported")

	out := tui.NewOutput(w, outputFormat)
	if outputFormat == OutputJSON {
		return out.JSON(exportResult{Status: "exported", CertificateID: id, Path: filePath})
	}

	out.Success(fmt.Sprintf("bundle written to %s", filePath))
	return nil
}

// handleExportError reports an export error in the requested format.
func handleExportError(format string, w io.Writer, err error) error {
	if format == OutputJSON {
		tui.NewOutput(w, format).Error(err)
		return errors.ErrJSONErrorOutput
	}
	if stderrors.Is(err, errors.ErrCertificateNotFound) {
		return tui.NewActionableError(err.Error(), "Run: sigil list")
	}
	return err
}
