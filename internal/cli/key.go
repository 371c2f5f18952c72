package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil/internal/ctxutil"
	"github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/keysource"
	"github.com/mrz1836/sigil/internal/tui"
)

// AddKeyCommand adds the key command and its subcommands to the root command.
func AddKeyCommand(root *cobra.Command) {
	keyCmd := newKeyCmd()
	keyCmd.AddCommand(newKeyFingerprintCmd())
	keyCmd.AddCommand(newKeyInitCmd())
	root.AddCommand(keyCmd)
}

// newKeyCmd creates the key parent command.
func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key",
		Short: "Manage the device signing key",
		Long: `Inspect and manage the ECDSA P-256 key that signs certificates on this
device. The key never leaves its backend; only the public half is
embedded in certificates.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newKeyFingerprintCmd creates the key fingerprint subcommand.
func newKeyFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint",
		Short: "Show the signing key fingerprint",
		Long: `Print the SHA-256 fingerprint of the device public key, plus the backend
holding the private half.

Exit codes:
  0  fingerprint printed
  1  no key found or keystore unreachable

Examples:
  sigil key fingerprint
  sigil key fingerprint -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runKeyFingerprint(cmd.Context(), cmd, os.Stdout)
			if stderrors.Is(err, errors.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}
}

// newKeyInitCmd creates the key init subcommand.
func newKeyInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate the signing key if missing",
		Long: `Generate the device signing key if one does not exist yet. Safe to run
repeatedly: an existing key is left untouched and its fingerprint is
reported.

Exit codes:
  0  key present (new or existing)
  1  key generation failed

Examples:
  sigil key init`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runKeyInit(cmd.Context(), cmd, os.Stdout)
			if stderrors.Is(err, errors.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}
}

// keyResult is the JSON output for key subcommands.
type keyResult struct {
	Backend     string `json:"backend"`
	Fingerprint string `json:"fingerprint"`
}

// runKeyFingerprint executes the key fingerprint subcommand.
func runKeyFingerprint(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	tui.CheckNoColor()

	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return handleKeyError(outputFormat, w, err)
	}

	sgn, err := ec.Signer(ctx)
	if err != nil {
		return handleKeyError(outputFormat, w, err)
	}

	fingerprint, err := sgn.PublicKeyFingerprint(ctx)
	if err != nil {
		return handleKeyError(outputFormat, w, err)
	}

	return displayKeyResult(outputFormat, w, keyResult{
		Backend:     string(sgn.Backend()),
		Fingerprint: fingerprint,
	})
}

// runKeyInit executes the key init subcommand.
func runKeyInit(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	tui.CheckNoColor()

	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return handleKeyError(outputFormat, w, err)
	}

	sgn, err := ec.Signer(ctx)
	if err != nil {
		return handleKeyError(outputFormat, w, err)
	}

	if _, err = sgn.GenerateKeyIfNeeded(ctx); err != nil {
		return handleKeyError(outputFormat, w, err)
	}

	fingerprint, err := sgn.PublicKeyFingerprint(ctx)
	if err != nil {
		return handleKeyError(outputFormat, w, err)
	}

	logger.Info().
		Str("backend", string(sgn.Backend())).
		Str("fingerprint", fingerprint).
		Msg("signing key ready")

	return displayKeyResult(outputFormat, w, keyResult{
		Backend:     string(sgn.Backend()),
		Fingerprint: fingerprint,
	})
}

// displayKeyResult writes the key details in the requested format.
func displayKeyResult(format string, w io.Writer, result keyResult) error {
	if format == OutputJSON {
		return tui.NewOutput(w, format).JSON(result)
	}
	tui.RenderKeyValues(w, [][2]string{
		{"Backend", result.Backend},
		{"Fingerprint", result.Fingerprint},
	})
	return nil
}

// handleKeyError reports a key command error in the requested format.
func handleKeyError(format string, w io.Writer, err error) error {
	if format == OutputJSON {
		tui.NewOutput(w, format).Error(err)
		return errors.ErrJSONErrorOutput
	}
	if stderrors.Is(err, keysource.ErrKeyNotFound) {
		return tui.NewActionableError(err.Error(), "Run: sigil init")
	}
	return err
}
