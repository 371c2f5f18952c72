// Package domain provides shared domain types for the sigil certificate ledger.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/crypto, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case per architecture requirements.
package domain

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/crypto"
	sigilerrors "github.com/mrz1836/sigil/internal/errors"
)

// RiskTier classifies how destructive the recorded execution was.
type RiskTier string

const (
	// RiskTierLow covers read-only or trivially reversible executions.
	RiskTierLow RiskTier = "low"

	// RiskTierMedium covers reversible mutations (file edits, config changes).
	RiskTierMedium RiskTier = "medium"

	// RiskTierHigh covers irreversible or outward-facing executions
	// (deletions, payments, external messages).
	RiskTierHigh RiskTier = "high"
)

// Valid reports whether the tier is one of the known values.
func (r RiskTier) Valid() bool {
	switch r {
	case RiskTierLow, RiskTierMedium, RiskTierHigh:
		return true
	default:
		return false
	}
}

// ParseRiskTier converts a user-supplied string into a RiskTier.
func ParseRiskTier(s string) (RiskTier, error) {
	tier := RiskTier(strings.ToLower(strings.TrimSpace(s)))
	if !tier.Valid() {
		return "", fmt.Errorf("%w: risk tier %q (want low, medium, or high)", sigilerrors.ErrInvalidInput, s)
	}
	return tier, nil
}

// CertificateInput carries the raw execution facts long enough to be hashed.
// It is transient and in-memory only: no JSON tags, never persisted, never
// logged verbatim. Only its SHA-256 digests survive into a Certificate.
type CertificateInput struct {
	// Intent: what the agent was asked to do.
	IntentAction string
	IntentTarget string

	// Proposal: the plan that was shown to the approver.
	ProposalSummary   string
	ProposalStepCount int

	// Authorization: the approval token minted for this execution.
	TokenID        string
	PlanID         string
	TokenSignature string

	// ApproverID identifies who approved (user id, email, or key id).
	ApproverID string

	// PolicySnapshot is the serialized policy in force at approval time.
	PolicySnapshot string

	// RiskTier as classified at approval time.
	RiskTier RiskTier

	// Connector identity, when the execution ran through one.
	ConnectorID      string
	ConnectorVersion string

	// Result: what actually happened.
	ResultSummary string
	ResultStatus  string
}

// Certificate is the immutable, signed record of one approved execution.
// It contains only digests of the inputs, never the inputs themselves.
//
// Example JSON representation:
//
//	{
//	    "id": "0193d2f4-5a6b-7c8d-9e0f-1a2b3c4d5e6f",
//	    "timestamp": "2025-03-14T09:26:53Z",
//	    "intent_hash": "4ac9...b333",
//	    "proposal_hash": "9c56...35ab",
//	    "authorization_token_hash": "1f8e...77aa",
//	    "approver_id_hash": "c0de...9911",
//	    "result_hash": "77aa...1f8e",
//	    "policy_snapshot_hash": "35ab...9c56",
//	    "certificate_hash": "b333...4ac9",
//	    "previous_certificate_hash": "GENESIS",
//	    "device_key_id": "9911...c0de",
//	    "risk_tier": "medium",
//	    "signature": "3045...",
//	    "signer_public_key": "3059...",
//	    "schema_version": 1
//	}
type Certificate struct {
	// ID is the unique identifier for the certificate (UUID).
	ID string `json:"id"`

	// Timestamp is when the certificate was created (UTC, second precision).
	Timestamp time.Time `json:"timestamp"`

	// IntentHash is the SHA-256 of the intent action and target.
	IntentHash string `json:"intent_hash"`

	// ProposalHash is the SHA-256 of the proposal summary and step count.
	ProposalHash string `json:"proposal_hash"`

	// AuthorizationTokenHash is the SHA-256 of the token id, plan id, and token signature.
	AuthorizationTokenHash string `json:"authorization_token_hash"`

	// ApproverIDHash is the SHA-256 of the approver identity. Never the identity itself.
	ApproverIDHash string `json:"approver_id_hash"`

	// ResultHash is the SHA-256 of the result summary and status.
	ResultHash string `json:"result_hash"`

	// PolicySnapshotHash is the SHA-256 of the policy in force at approval time.
	PolicySnapshotHash string `json:"policy_snapshot_hash"`

	// CertificateHash links this certificate into the chain.
	// Computed by crypto.ComputeCertificateHash over the core hashes,
	// the timestamp, and PreviousCertificateHash.
	CertificateHash string `json:"certificate_hash"`

	// PreviousCertificateHash is the predecessor's CertificateHash,
	// or constants.GenesisHash for the first certificate.
	PreviousCertificateHash string `json:"previous_certificate_hash"`

	// DeviceKeyID is the SHA-256 fingerprint of the signer public key.
	DeviceKeyID string `json:"device_key_id"`

	// RiskTier as classified at approval time.
	RiskTier RiskTier `json:"risk_tier"`

	// Connector identity, when the execution ran through one.
	ConnectorID      string `json:"connector_id,omitempty"`
	ConnectorVersion string `json:"connector_version,omitempty"`

	// Signature is the hex-encoded ASN.1 DER ECDSA signature over CanonicalPayload.
	Signature string `json:"signature"`

	// SignerPublicKey is the hex-encoded PKIX DER public key that verifies Signature.
	SignerPublicKey string `json:"signer_public_key"`

	// SchemaVersion enables forward-compatible schema migrations.
	SchemaVersion int `json:"schema_version"`
}

// canonicalSlotCount is the fixed number of fields in CanonicalPayload.
// Changing it breaks verification of every previously signed certificate.
const canonicalSlotCount = 14

// CanonicalPayload returns the deterministic byte serialization that is
// signed and verified. All pre-signature fields appear in fixed order,
// joined with constants.HashFieldSeparator; optional connector slots are
// empty strings when absent so the slot count never varies. Any independent
// verifier can rebuild this exact byte sequence from the persisted fields.
func (c *Certificate) CanonicalPayload() []byte {
	slots := [canonicalSlotCount]string{
		c.ID,
		strconv.FormatInt(c.Timestamp.Unix(), 10),
		c.IntentHash,
		c.ProposalHash,
		c.AuthorizationTokenHash,
		c.ApproverIDHash,
		c.ResultHash,
		c.PolicySnapshotHash,
		c.CertificateHash,
		c.PreviousCertificateHash,
		c.DeviceKeyID,
		string(c.RiskTier),
		c.ConnectorID,
		c.ConnectorVersion,
	}
	return []byte(strings.Join(slots[:], constants.HashFieldSeparator))
}

// VerifyHash recomputes CertificateHash from the certificate's own fields
// and reports whether it matches. Pure self-check; does not consult the
// store or the predecessor.
func (c *Certificate) VerifyHash() bool {
	recomputed := crypto.ComputeCertificateHash(
		c.IntentHash,
		c.ProposalHash,
		c.AuthorizationTokenHash,
		c.ResultHash,
		c.Timestamp,
		c.PreviousCertificateHash,
	)
	return recomputed == c.CertificateHash
}

// VerifySignature checks Signature against CanonicalPayload using the
// embedded SignerPublicKey. Returns false on any decode, parse, or
// verification failure; it never panics and never errors.
func (c *Certificate) VerifySignature() bool {
	pubDER, err := hex.DecodeString(c.SignerPublicKey)
	if err != nil {
		return false
	}

	pub, err := crypto.ParsePublicKey(pubDER)
	if err != nil {
		return false
	}

	sig, err := hex.DecodeString(c.Signature)
	if err != nil {
		return false
	}

	return crypto.VerifyECDSA(pub, c.CanonicalPayload(), sig)
}

// Clone returns a copy safe to hand to readers.
// Every field is a value type, so a shallow copy is a complete copy.
func (c *Certificate) Clone() *Certificate {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Validate performs structural checks on the certificate.
// It does not verify the signature or the chain link; use VerifySignature
// and the store's VerifyChain for those.
func (c *Certificate) Validate() error {
	if c == nil {
		return sigilerrors.Wrap(sigilerrors.ErrInvalidCertificate, "certificate is nil")
	}

	if _, err := uuid.Parse(c.ID); err != nil {
		return fmt.Errorf("%w: id %q is not a UUID", sigilerrors.ErrInvalidCertificate, c.ID)
	}

	if c.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is zero", sigilerrors.ErrInvalidCertificate)
	}

	hashFields := []struct {
		name  string
		value string
	}{
		{"intent_hash", c.IntentHash},
		{"proposal_hash", c.ProposalHash},
		{"authorization_token_hash", c.AuthorizationTokenHash},
		{"approver_id_hash", c.ApproverIDHash},
		{"result_hash", c.ResultHash},
		{"policy_snapshot_hash", c.PolicySnapshotHash},
		{"certificate_hash", c.CertificateHash},
		{"device_key_id", c.DeviceKeyID},
	}
	for _, f := range hashFields {
		if !IsHexHash(f.value) {
			return fmt.Errorf("%w: %s %q is not a 64-char lowercase hex digest", sigilerrors.ErrInvalidCertificate, f.name, f.value)
		}
	}

	if c.PreviousCertificateHash != constants.GenesisHash && !IsHexHash(c.PreviousCertificateHash) {
		return fmt.Errorf("%w: previous_certificate_hash %q is neither %q nor a hex digest",
			sigilerrors.ErrInvalidCertificate, c.PreviousCertificateHash, constants.GenesisHash)
	}

	if !c.RiskTier.Valid() {
		return fmt.Errorf("%w: risk_tier %q", sigilerrors.ErrInvalidCertificate, c.RiskTier)
	}

	if c.Signature == "" {
		return fmt.Errorf("%w: signature is empty", sigilerrors.ErrInvalidCertificate)
	}
	if _, err := hex.DecodeString(c.Signature); err != nil {
		return fmt.Errorf("%w: signature is not hex", sigilerrors.ErrInvalidCertificate)
	}

	if c.SignerPublicKey == "" {
		return fmt.Errorf("%w: signer_public_key is empty", sigilerrors.ErrInvalidCertificate)
	}
	pubDER, err := hex.DecodeString(c.SignerPublicKey)
	if err != nil {
		return fmt.Errorf("%w: signer_public_key is not hex", sigilerrors.ErrInvalidCertificate)
	}

	// device_key_id is defined as the fingerprint of the embedded public key.
	if crypto.PublicKeyFingerprint(pubDER) != c.DeviceKeyID {
		return fmt.Errorf("%w: device_key_id does not match the signer public key fingerprint", sigilerrors.ErrInvalidCertificate)
	}

	if c.SchemaVersion < 1 {
		return fmt.Errorf("%w: schema_version %d", sigilerrors.ErrInvalidCertificate, c.SchemaVersion)
	}

	return nil
}

// IsHexHash reports whether s is exactly 64 lowercase hex characters.
func IsHexHash(s string) bool {
	if len(s) != constants.HashHexLength {
		return false
	}
	for _, r := range s {
		isDigit := r >= '0' && r <= '9'
		isLowerHex := r >= 'a' && r <= 'f'
		if !isDigit && !isLowerHex {
			return false
		}
	}
	return true
}
