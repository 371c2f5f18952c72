package testutil

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/crypto"
	"github.com/mrz1836/sigil/internal/domain"
)

// CertificateFactory mints correctly signed certificates that chain onto
// each other, for tests that need a valid ledger without running the
// full builder.
type CertificateFactory struct {
	key       *ecdsa.PrivateKey
	pubKeyHex string
	keyID     string
	tip       string
	now       time.Time
	seq       int
}

// NewCertificateFactory creates a factory with a fresh P-256 key.
// The chain starts at genesis and timestamps start at a fixed instant,
// advancing one second per certificate.
func NewCertificateFactory(t *testing.T) *CertificateFactory {
	t.Helper()

	key, err := crypto.GenerateECDSAKey()
	require.NoError(t, err)

	pubDER, err := crypto.MarshalPublicKey(&key.PublicKey)
	require.NoError(t, err)

	return &CertificateFactory{
		key:       key,
		pubKeyHex: hex.EncodeToString(pubDER),
		keyID:     crypto.PublicKeyFingerprint(pubDER),
		tip:       constants.GenesisHash,
		now:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// PublicKeyHex returns the factory's hex-encoded PKIX public key.
func (f *CertificateFactory) PublicKeyHex() string {
	return f.pubKeyHex
}

// KeyID returns the factory key's fingerprint.
func (f *CertificateFactory) KeyID() string {
	return f.keyID
}

// Tip returns the current chain tip hash.
func (f *CertificateFactory) Tip() string {
	return f.tip
}

// Next mints the next certificate in the chain and advances the tip.
func (f *CertificateFactory) Next(t *testing.T) *domain.Certificate {
	t.Helper()

	f.seq++
	seq := strconv.Itoa(f.seq)

	cert := &domain.Certificate{
		ID:                      uuid.NewString(),
		Timestamp:               f.now,
		IntentHash:              crypto.SHA256Hex("intent " + seq),
		ProposalHash:            crypto.SHA256Hex("proposal " + seq),
		AuthorizationTokenHash:  crypto.SHA256Hex("token " + seq),
		ApproverIDHash:          crypto.SHA256Hex("approver " + seq),
		ResultHash:              crypto.SHA256Hex("result " + seq),
		PolicySnapshotHash:      crypto.SHA256Hex("policy " + seq),
		PreviousCertificateHash: f.tip,
		DeviceKeyID:             f.keyID,
		RiskTier:                domain.RiskTierMedium,
		SignerPublicKey:         f.pubKeyHex,
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

	sig, err := crypto.SignECDSA(f.key, cert.CanonicalPayload())
	require.NoError(t, err)
	cert.Signature = hex.EncodeToString(sig)

	f.tip = cert.CertificateHash
	f.now = f.now.Add(time.Second)

	return cert
}

// Chain mints n chained certificates in order.
func (f *CertificateFactory) Chain(t *testing.T, n int) []*domain.Certificate {
	t.Helper()

	certs := make([]*domain.Certificate, 0, n)
	for i := 0; i < n; i++ {
		certs = append(certs, f.Next(t))
	}
	return certs
}
