package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrz1836/sigil/internal/clock"
	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/crypto"
	"github.com/mrz1836/sigil/internal/domain"
	sigilerrors "github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/signer"
)

// Builder turns one completed, approved execution into one signed
// certificate appended to the store. It fails closed: any hashing, signing,
// or store problem aborts the whole operation and nothing is appended.
type Builder struct {
	store  Store
	signer *signer.Signer
	clk    clock.Clock
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock sets a custom clock, used by tests to pin timestamps.
func WithClock(clk clock.Clock) BuilderOption {
	return func(b *Builder) {
		b.clk = clk
	}
}

// NewBuilder creates a Builder over the given store and signer.
func NewBuilder(store Store, sgn *signer.Signer, opts ...BuilderOption) *Builder {
	b := &Builder{
		store:  store,
		signer: sgn,
		clk:    clock.RealClock{},
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Build records one execution: hashes the input fields independently, links
// the certificate to the current chain tip, signs the canonical payload,
// and appends. Exactly one store append happens on success, zero on any
// failure path. Only ids and hashes are logged, never input plaintext.
func (b *Builder) Build(ctx context.Context, input *domain.CertificateInput) (*domain.Certificate, error) {
	log := zerolog.Ctx(ctx)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := b.clk.Now().UTC().Truncate(time.Second)

	// Each semantically distinct input is hashed on its own, never as one
	// concatenated blob, so a verifier with the original value of one field
	// can check that field without learning any other.
	intentHash := hashFields(input.IntentAction, input.IntentTarget)
	proposalHash := hashFields(input.ProposalSummary, strconv.Itoa(input.ProposalStepCount))
	tokenHash := hashFields(input.TokenID, input.PlanID, input.TokenSignature)
	approverHash := crypto.SHA256Hex(input.ApproverID)
	resultHash := hashFields(input.ResultSummary, input.ResultStatus)
	policyHash := crypto.SHA256Hex(input.PolicySnapshot)

	tip, err := b.store.Tip(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading chain tip: %w", err)
	}

	pubDER, err := b.signer.PublicKey(ctx)
	if err != nil {
		return nil, err
	}

	cert := &domain.Certificate{
		ID:                      uuid.NewString(),
		Timestamp:               now,
		IntentHash:              intentHash,
		ProposalHash:            proposalHash,
		AuthorizationTokenHash:  tokenHash,
		ApproverIDHash:          approverHash,
		ResultHash:              resultHash,
		PolicySnapshotHash:      policyHash,
		PreviousCertificateHash: tip,
		DeviceKeyID:             crypto.PublicKeyFingerprint(pubDER),
		RiskTier:                input.RiskTier,
		ConnectorID:             input.ConnectorID,
		ConnectorVersion:        input.ConnectorVersion,
		SignerPublicKey:         hex.EncodeToString(pubDER),
		SchemaVersion:           constants.CertificateSchemaVersion,
	}

	cert.CertificateHash = crypto.ComputeCertificateHash(
		cert.IntentHash,
		cert.ProposalHash,
		cert.AuthorizationTokenHash,
		cert.ResultHash,
		cert.Timestamp,
		cert.PreviousCertificateHash,
	)

	log.Debug().
		Str("certificate_id", cert.ID).
		Str("previous_hash", cert.PreviousCertificateHash).
		Str("certificate_hash", cert.CertificateHash).
		Msg("certificate assembled")

	sig, err := b.signer.Sign(ctx, cert.CanonicalPayload())
	if err != nil {
		return nil, err
	}
	cert.Signature = hex.EncodeToString(sig)

	if err := b.store.Append(ctx, cert); err != nil {
		return nil, err
	}

	log.Info().
		Str("certificate_id", cert.ID).
		Str("certificate_hash", cert.CertificateHash).
		Str("risk_tier", string(cert.RiskTier)).
		Msg("certificate recorded")

	return cert, nil
}

// validateInput checks the execution facts before any hashing happens.
func validateInput(input *domain.CertificateInput) error {
	if input == nil {
		return sigilerrors.Wrap(sigilerrors.ErrInvalidInput, "certificate input is nil")
	}

	required := []struct {
		name  string
		value string
	}{
		{"intent action", input.IntentAction},
		{"proposal summary", input.ProposalSummary},
		{"token id", input.TokenID},
		{"token signature", input.TokenSignature},
		{"approver id", input.ApproverID},
		{"result status", input.ResultStatus},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", sigilerrors.ErrInvalidInput, f.name)
		}
	}

	if !input.RiskTier.Valid() {
		return fmt.Errorf("%w: risk tier %q (want low, medium, or high)", sigilerrors.ErrInvalidInput, input.RiskTier)
	}

	if input.ProposalStepCount < 0 {
		return fmt.Errorf("%w: proposal step count %d is negative", sigilerrors.ErrInvalidInput, input.ProposalStepCount)
	}

	return nil
}

// hashFields digests several values of one semantic field as a unit.
func hashFields(values ...string) string {
	return crypto.SHA256Hex(strings.Join(values, constants.HashFieldSeparator))
}
