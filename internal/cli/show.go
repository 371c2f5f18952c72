// Package cli provides the command-line interface for sigil.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/ctxutil"
	"github.com/mrz1836/sigil/internal/domain"
	"github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/tui"
)

// Cached glamour renderer shared across invocations.
var (
	glamourRenderer     *glamour.TermRenderer //nolint:gochecknoglobals // cached renderer for performance
	glamourRendererOnce sync.Once             //nolint:gochecknoglobals // sync.Once for renderer initialization
)

// getGlamourRenderer returns a cached glamour renderer for markdown rendering.
// Returns nil when the renderer cannot be constructed; callers fall back to
// plain text.
func getGlamourRenderer() *glamour.TermRenderer {
	glamourRendererOnce.Do(func() {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			glamourRenderer = r
		}
	})
	return glamourRenderer
}

// AddShowCommand adds the show command to the root command.
func AddShowCommand(root *cobra.Command) {
	root.AddCommand(newShowCmd())
}

// newShowCmd creates the show command.
func newShowCmd() *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the full detail of one certificate",
		Long: `Display every persisted field of one certificate: all digests, the chain
link, the device key id, the signature, and the signer public key.

With --render, a markdown summary is rendered for the terminal instead of
the key/value listing.

Exit codes:
  0  certificate found and displayed
  1  lookup failed (unknown id, unreadable ledger)

Examples:
  sigil show 0193d2f4-5a6b-7c8d-9e0f-1a2b3c4d5e6f
  sigil show 0193d2f4-5a6b-7c8d-9e0f-1a2b3c4d5e6f --render
  sigil show 0193d2f4-5a6b-7c8d-9e0f-1a2b3c4d5e6f -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runShow(cmd.Context(), cmd, os.Stdout, args[0], render)
			if stderrors.Is(err, errors.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "render a markdown summary instead of the field listing")

	return cmd
}

// runShow executes the show command.
func runShow(ctx context.Context, cmd *cobra.Command, w io.Writer, id string, render bool) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	tui.CheckNoColor()

	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return handleShowError(outputFormat, w, err)
	}

	cert, err := ec.Store().Get(ctx, id)
	if err != nil {
		return handleShowError(outputFormat, w, err)
	}

	if outputFormat == OutputJSON {
		return tui.NewOutput(w, outputFormat).JSON(cert)
	}

	if render {
		renderCertificateMarkdown(w, cert)
		return nil
	}

	renderCertificateDetail(w, cert)
	return nil
}

// renderCertificateDetail writes the key/value field listing.
func renderCertificateDetail(w io.Writer, cert *domain.Certificate) {
	pairs := [][2]string{
		{"ID", cert.ID},
		{"Timestamp", cert.Timestamp.Format(constants.TimeFormatISO)},
		{"Risk tier", tui.FormatRiskTier(cert.RiskTier)},
		{"Intent hash", cert.IntentHash},
		{"Proposal hash", cert.ProposalHash},
		{"Token hash", cert.AuthorizationTokenHash},
		{"Approver hash", cert.ApproverIDHash},
		{"Result hash", cert.ResultHash},
		{"Policy hash", cert.PolicySnapshotHash},
		{"Certificate hash", cert.CertificateHash},
		{"Previous hash", cert.PreviousCertificateHash},
		{"Device key", cert.DeviceKeyID},
	}
	if cert.ConnectorID != "" {
		connector := cert.ConnectorID
		if cert.ConnectorVersion != "" {
			connector += "@" + cert.ConnectorVersion
		}
		pairs = append(pairs, [2]string{"Connector", connector})
	}
	pairs = append(pairs,
		[2]string{"Signature", tui.ShortHash(cert.Signature)},
		[2]string{"Signer key", tui.ShortHash(cert.SignerPublicKey)},
		[2]string{"Schema version", fmt.Sprintf("%d", cert.SchemaVersion)},
	)

	tui.RenderKeyValues(w, pairs)
}

// renderCertificateMarkdown renders a markdown summary via glamour,
// falling back to the raw markdown when no renderer is available.
func renderCertificateMarkdown(w io.Writer, cert *domain.Certificate) {
	md := certificateMarkdown(cert)

	if renderer := getGlamourRenderer(); renderer != nil {
		if rendered, err := renderer.Render(md); err == nil {
			_, _ = fmt.Fprint(w, rendered)
			return
		}
	}
	// Fallback to plain markdown
	_, _ = fmt.Fprintln(w, md)
}

// certificateMarkdown builds the markdown summary of a certificate.
func certificateMarkdown(cert *domain.Certificate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Certificate %s\n\n", tui.ShortID(cert.ID))
	fmt.Fprintf(&b, "Recorded **%s**, risk tier **%s**.\n\n",
		cert.Timestamp.Format(constants.TimeFormatISO), string(cert.RiskTier))

	if cert.ConnectorID != "" {
		connector := cert.ConnectorID
		if cert.ConnectorVersion != "" {
			connector += "@" + cert.ConnectorVersion
		}
		fmt.Fprintf(&b, "Executed through connector `%s`.\n\n", connector)
	}

	b.WriteString("## Chain link\n\n")
	fmt.Fprintf(&b, "- Certificate hash: `%s`\n", cert.CertificateHash)
	fmt.Fprintf(&b, "- Previous hash: `%s`\n", cert.PreviousCertificateHash)
	fmt.Fprintf(&b, "- Device key: `%s`\n\n", cert.DeviceKeyID)

	b.WriteString("## Digests\n\n")
	fmt.Fprintf(&b, "| Field | SHA-256 |\n|---|---|\n")
	fmt.Fprintf(&b, "| Intent | `%s` |\n", tui.ShortHash(cert.IntentHash))
	fmt.Fprintf(&b, "| Proposal | `%s` |\n", tui.ShortHash(cert.ProposalHash))
	fmt.Fprintf(&b, "| Token | `%s` |\n", tui.ShortHash(cert.AuthorizationTokenHash))
	fmt.Fprintf(&b, "| Approver | `%s` |\n", tui.ShortHash(cert.ApproverIDHash))
	fmt.Fprintf(&b, "| Result | `%s` |\n", tui.ShortHash(cert.ResultHash))
	fmt.Fprintf(&b, "| Policy | `%s` |\n", tui.ShortHash(cert.PolicySnapshotHash))

	return b.String()
}

// handleShowError reports the error in the requested format.
func handleShowError(format string, w io.Writer, err error) error {
	if format == OutputJSON {
		tui.NewOutput(w, format).Error(err)
		return errors.ErrJSONErrorOutput
	}
	if stderrors.Is(err, errors.ErrCertificateNotFound) {
		return tui.NewActionableError(err.Error(), "Run: sigil list")
	}
	return err
}
