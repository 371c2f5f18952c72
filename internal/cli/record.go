// Package cli provides the command-line interface for sigil.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/ctxutil"
	"github.com/mrz1836/sigil/internal/domain"
	"github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/tui"
)

// RecordFlags holds flags specific to the record command.
type RecordFlags struct {
	// Input is the path to a CertificateInput JSON document ("-" for stdin).
	Input string

	// Field overrides, applied on top of the JSON document.
	IntentAction     string
	IntentTarget     string
	ProposalSummary  string
	ProposalSteps    int
	TokenID          string
	PlanID           string
	TokenSignature   string
	ApproverID       string
	PolicySnapshot   string
	RiskTier         string
	ConnectorID      string
	ConnectorVersion string
	ResultSummary    string
	ResultStatus     string
}

// recordInput is the JSON wire form of a CertificateInput. The domain type
// deliberately carries no JSON tags; the CLI owns the only serialized form
// and discards it as soon as the digests are computed.
type recordInput struct {
	IntentAction      string `json:"intent_action"`
	IntentTarget      string `json:"intent_target,omitempty"`
	ProposalSummary   string `json:"proposal_summary"`
	ProposalStepCount int    `json:"proposal_step_count,omitempty"`
	TokenID           string `json:"token_id"`
	PlanID            string `json:"plan_id,omitempty"`
	TokenSignature    string `json:"token_signature"`
	ApproverID        string `json:"approver_id"`
	PolicySnapshot    string `json:"policy_snapshot,omitempty"`
	RiskTier          string `json:"risk_tier"`
	ConnectorID       string `json:"connector_id,omitempty"`
	ConnectorVersion  string `json:"connector_version,omitempty"`
	ResultSummary     string `json:"result_summary,omitempty"`
	ResultStatus      string `json:"result_status"`
}

// AddRecordCommand adds the record command to the root command.
func AddRecordCommand(root *cobra.Command) {
	flags := &RecordFlags{}
	root.AddCommand(newRecordCmd(flags))
}

// newRecordCmd creates the record command.
func newRecordCmd(flags *RecordFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record one approved execution as a signed certificate",
		Long: `Build and append one execution certificate from a CertificateInput JSON
document, supplied on stdin or via --input. Individual fields can be set
or overridden with flags, so fully scripted invocations need no document
at all.

The raw input is hashed field by field and immediately discarded: only
SHA-256 digests are persisted or logged, never the inputs themselves.
Recording fails closed; if hashing, signing, or the append fails, nothing
is written.

Exit codes:
  0  certificate recorded
  1  recording failed (nothing was appended)

Examples:
  orchestrator emit-input | sigil record
  sigil record --input done.json
  sigil record --input done.json --risk high -o json
  sigil record --intent-action deploy_service --proposal-summary "deploy v2" \
    --token-id tok_01 --token-signature a1b2 --approver dev@example.com \
    --risk medium --result-status success`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := runRecord(cmd.Context(), cmd, os.Stdout, flags)
			if stderrors.Is(err, errors.ErrJSONErrorOutput) {
				cmd.SilenceErrors = true
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&flags.Input, "input", "i", "", "path to a CertificateInput JSON document (\"-\" for stdin)")
	cmd.Flags().StringVar(&flags.IntentAction, "intent-action", "", "what the agent was asked to do")
	cmd.Flags().StringVar(&flags.IntentTarget, "intent-target", "", "what the intent acted on")
	cmd.Flags().StringVar(&flags.ProposalSummary, "proposal-summary", "", "summary of the approved plan")
	cmd.Flags().IntVar(&flags.ProposalSteps, "proposal-steps", 0, "number of steps in the approved plan")
	cmd.Flags().StringVar(&flags.TokenID, "token-id", "", "authorization token id")
	cmd.Flags().StringVar(&flags.PlanID, "plan-id", "", "plan id the token was minted for")
	cmd.Flags().StringVar(&flags.TokenSignature, "token-signature", "", "authorization token signature")
	cmd.Flags().StringVar(&flags.ApproverID, "approver", "", "approver identity (hashed, never stored)")
	cmd.Flags().StringVar(&flags.PolicySnapshot, "policy-snapshot", "", "serialized policy in force at approval time")
	cmd.Flags().StringVar(&flags.RiskTier, "risk", "", "risk tier (low|medium|high)")
	cmd.Flags().StringVar(&flags.ConnectorID, "connector-id", "", "connector the execution ran through")
	cmd.Flags().StringVar(&flags.ConnectorVersion, "connector-version", "", "connector version")
	cmd.Flags().StringVar(&flags.ResultSummary, "result-summary", "", "summary of what actually happened")
	cmd.Flags().StringVar(&flags.ResultStatus, "result-status", "", "result status (e.g. success, failure)")

	return cmd
}

// runRecord executes the record command.
func runRecord(ctx context.Context, cmd *cobra.Command, w io.Writer, flags *RecordFlags) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	tui.CheckNoColor()

	input, err := readRecordInput(cmd, flags)
	if err != nil {
		return handleRecordError(outputFormat, w, err)
	}

	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return handleRecordError(outputFormat, w, err)
	}

	builder, err := ec.Builder(ctx)
	if err != nil {
		return handleRecordError(outputFormat, w, err)
	}

	cert, err := builder.Build(ctx, input)
	if err != nil {
		return handleRecordError(outputFormat, w, err)
	}

	logger.Debug().
		Str("certificate_id", cert.ID).
		Str("certificate_hash", cert.CertificateHash).
		Msg("record command completed")

	out := tui.NewOutput(w, outputFormat)
	if outputFormat == OutputJSON {
		return out.JSON(cert)
	}

	out.Success("certificate recorded")
	tui.RenderKeyValues(w, [][2]string{
		{"ID", cert.ID},
		{"Timestamp", cert.Timestamp.Format(constants.TimeFormatISO)},
		{"Risk tier", tui.FormatRiskTier(cert.RiskTier)},
		{"Certificate hash", cert.CertificateHash},
		{"Previous hash", cert.PreviousCertificateHash},
		{"Device key", cert.DeviceKeyID},
	})
	return nil
}

// readRecordInput assembles the CertificateInput from the JSON document and
// flag overrides. Unknown JSON fields are rejected so a typoed field name
// can never silently drop an execution fact.
func readRecordInput(cmd *cobra.Command, flags *RecordFlags) (*domain.CertificateInput, error) {
	data, err := readInputDocument(cmd, flags.Input)
	if err != nil {
		return nil, err
	}

	var doc recordInput
	if len(bytes.TrimSpace(data)) > 0 {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: parsing input document: %v", errors.ErrInvalidInput, err)
		}
	}

	applyRecordOverrides(cmd, flags, &doc)

	input := &domain.CertificateInput{
		IntentAction:      doc.IntentAction,
		IntentTarget:      doc.IntentTarget,
		ProposalSummary:   doc.ProposalSummary,
		ProposalStepCount: doc.ProposalStepCount,
		TokenID:           doc.TokenID,
		PlanID:            doc.PlanID,
		TokenSignature:    doc.TokenSignature,
		ApproverID:        doc.ApproverID,
		PolicySnapshot:    doc.PolicySnapshot,
		ConnectorID:       doc.ConnectorID,
		ConnectorVersion:  doc.ConnectorVersion,
		ResultSummary:     doc.ResultSummary,
		ResultStatus:      doc.ResultStatus,
	}

	if doc.RiskTier != "" {
		tier, err := domain.ParseRiskTier(doc.RiskTier)
		if err != nil {
			return nil, err
		}
		input.RiskTier = tier
	}

	return input, nil
}

// readInputDocument reads the raw JSON document: from the input path when
// given, from stdin when the path is "-" or when stdin is piped, and
// nothing at all on an interactive terminal with no path.
func readInputDocument(cmd *cobra.Command, path string) ([]byte, error) {
	switch {
	case path == "-":
		return io.ReadAll(cmd.InOrStdin())
	case path != "":
		data, err := os.ReadFile(path) //nolint:gosec // Reads the document path the user passed
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		return data, nil
	case !terminalCheck():
		return io.ReadAll(cmd.InOrStdin())
	default:
		return nil, nil
	}
}

// applyRecordOverrides copies explicitly set flags over the document fields.
// Only flags the user changed are applied, so zero values never erase
// document content.
func applyRecordOverrides(cmd *cobra.Command, flags *RecordFlags, doc *recordInput) {
	set := cmd.Flags().Changed

	if set("intent-action") {
		doc.IntentAction = flags.IntentAction
	}
	if set("intent-target") {
		doc.IntentTarget = flags.IntentTarget
	}
	if set("proposal-summary") {
		doc.ProposalSummary = flags.ProposalSummary
	}
	if set("proposal-steps") {
		doc.ProposalStepCount = flags.ProposalSteps
	}
	if set("token-id") {
		doc.TokenID = flags.TokenID
	}
	if set("plan-id") {
		doc.PlanID = flags.PlanID
	}
	if set("token-signature") {
		doc.TokenSignature = flags.TokenSignature
	}
	if set("approver") {
		doc.ApproverID = flags.ApproverID
	}
	if set("policy-snapshot") {
		doc.PolicySnapshot = flags.PolicySnapshot
	}
	if set("risk") {
		doc.RiskTier = flags.RiskTier
	}
	if set("connector-id") {
		doc.ConnectorID = flags.ConnectorID
	}
	if set("connector-version") {
		doc.ConnectorVersion = flags.ConnectorVersion
	}
	if set("result-summary") {
		doc.ResultSummary = flags.ResultSummary
	}
	if set("result-status") {
		doc.ResultStatus = flags.ResultStatus
	}
}

// handleRecordError reports the error in the requested format.
// In JSON mode the error is emitted as a JSON envelope and cobra's own
// printing is suppressed via ErrJSONErrorOutput.
func handleRecordError(format string, w io.Writer, err error) error {
	if format == OutputJSON {
		tui.NewOutput(w, format).Error(err)
		return errors.ErrJSONErrorOutput
	}
	return err
}
