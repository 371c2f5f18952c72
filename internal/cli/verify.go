// Package cli provides the command-line interface for sigil.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil/internal/ctxutil"
	"github.com/mrz1836/sigil/internal/domain"
	"github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/ledger"
	"github.com/mrz1836/sigil/internal/tui"
)

// errVerificationFindings marks a verification run that completed but found
// problems. It is always wrapped in an ExitCode2Error after the findings
// have been displayed.
var errVerificationFindings = stderrors.New("verification found problems")

// AddVerifyCommand adds the verify command to the root command.
func AddVerifyCommand(root *cobra.Command) {
	root.AddCommand(newVerifyCmd())
}

// newVerifyCmd creates the verify command.
func newVerifyCmd() *cobra.Command {
	var signatures bool

	cmd := &cobra.Command{
		Use:   "verify [id]",
		Short: "Verify chain integrity or one certificate",
		Long: `With no argument, walk the whole hash chain and report integrity. With a
certificate id, verify that one certificate: its signature, its own hash,
and its reachability from the start of the chain.

--signatures additionally checks every certificate signature in the
ledger, in parallel.

A broken chain or failed check is a finding, not a crash: the ledger
stays inspectable and the break point is reported.

Exit codes:
  0  everything checked out
  1  verification could not run (unreadable ledger, unknown id)
  2  verification ran and found problems

Examples:
  sigil verify
  sigil verify --signatures
  sigil verify 0193d2f4-5a6b-7c8d-9e0f-1a2b3c4d5e6f
  sigil verify -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			err := runVerify(cmd.Context(), cmd, os.Stdout, id, signatures)
			// Findings are fully displayed before the error is returned;
			// the error only carries the exit code.
			if stderrors.Is(err, errors.ErrJSONErrorOutput) || errors.IsExitCode2Error(err) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&signatures, "signatures", false, "additionally verify every certificate signature")

	return cmd
}

// verifyResult is the JSON output envelope for the verify command.
type verifyResult struct {
	Chain       *domain.ChainReport       `json:"chain,omitempty"`
	Certificate *domain.CertificateReport `json:"certificate,omitempty"`
	Signatures  *ledger.SignatureSweep    `json:"signatures,omitempty"`
}

// clean reports whether every requested check passed.
func (r *verifyResult) clean() bool {
	if r.Chain != nil && !r.Chain.Intact {
		return false
	}
	if r.Certificate != nil && !r.Certificate.AllValid {
		return false
	}
	if r.Signatures != nil && !r.Signatures.AllValid() {
		return false
	}
	return true
}

// runVerify executes the verify command.
func runVerify(ctx context.Context, cmd *cobra.Command, w io.Writer, id string, signatures bool) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	tui.CheckNoColor()

	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return handleVerifyError(outputFormat, w, err)
	}
	store := ec.Store()

	result := &verifyResult{}

	if id == "" {
		result.Chain, err = store.VerifyChain(ctx)
		if err != nil {
			return handleVerifyError(outputFormat, w, err)
		}
	} else {
		result.Certificate, err = store.VerifyCertificate(ctx, id)
		if err != nil {
			return handleVerifyError(outputFormat, w, err)
		}
	}

	if signatures {
		certs, allErr := store.All(ctx)
		if allErr != nil {
			return handleVerifyError(outputFormat, w, allErr)
		}
		result.Signatures, err = ledger.VerifySignatures(ctx, certs)
		if err != nil {
			return handleVerifyError(outputFormat, w, err)
		}
	}

	logger.Debug().
		Bool("clean", result.clean()).
		Str("certificate_id", id).
		Bool("signatures", signatures).
		Msg("verification completed")

	if outputFormat == OutputJSON {
		if jsonErr := tui.NewOutput(w, outputFormat).JSON(result); jsonErr != nil {
			return jsonErr
		}
		if !result.clean() {
			return errors.NewExitCode2Error(errVerificationFindings)
		}
		return nil
	}

	displayVerifyResult(w, result)
	if !result.clean() {
		return errors.NewExitCode2Error(errVerificationFindings)
	}
	return nil
}

// displayVerifyResult writes the text form of the verification outcome.
func displayVerifyResult(w io.Writer, result *verifyResult) {
	if result.Chain != nil {
		_, _ = fmt.Fprintln(w, tui.FormatChainStatus(result.Chain.Intact, result.Chain.Summary))
	}

	if result.Certificate != nil {
		rep := result.Certificate
		_, _ = fmt.Fprintln(w, tui.FormatChainStatus(rep.AllValid, "certificate "+tui.ShortID(rep.ID)))
		_, _ = fmt.Fprintln(w, "  "+tui.FormatChainStatus(rep.SignatureValid, "signature"))
		_, _ = fmt.Fprintln(w, "  "+tui.FormatChainStatus(rep.HashIntegrity, "hash integrity"))
		_, _ = fmt.Fprintln(w, "  "+tui.FormatChainStatus(rep.ChainIntact, "chain reachability"))
	}

	if result.Signatures != nil {
		sweep := result.Signatures
		summary := fmt.Sprintf("signatures: %d/%d valid", sweep.Valid, sweep.Total)
		_, _ = fmt.Fprintln(w, tui.FormatChainStatus(sweep.AllValid(), summary))
		if len(sweep.InvalidIDs) > 0 {
			_, _ = fmt.Fprintf(w, "  invalid: %s\n", strings.Join(sweep.InvalidIDs, ", "))
		}
	}
}

// handleVerifyError reports an operational error in the requested format.
func handleVerifyError(format string, w io.Writer, err error) error {
	if format == OutputJSON {
		tui.NewOutput(w, format).Error(err)
		return errors.ErrJSONErrorOutput
	}
	if stderrors.Is(err, errors.ErrCertificateNotFound) {
		return tui.NewActionableError(err.Error(), "Run: sigil list")
	}
	return err
}
