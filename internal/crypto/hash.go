// Package crypto provides the hashing and ECDSA primitives for the
// certificate ledger. Hashes are SHA-256 rendered as lowercase hex;
// signatures are ECDSA P-256 over a SHA-256 digest, ASN.1 DER encoded.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/mrz1836/sigil/internal/constants"
)

// SHA256Hex returns the SHA-256 digest of input as 64 lowercase hex characters.
// Hashing the empty string yields the digest of zero bytes, not an empty string.
func SHA256Hex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// ComputeCertificateHash derives the hash that links a certificate to its
// predecessor. The six inputs are joined in fixed order with
// constants.HashFieldSeparator and hashed once. The timestamp is encoded as
// decimal Unix seconds so the same instant hashes identically on every
// platform.
//
// Only these six fields are covered by the hash; the remaining certificate
// fields are covered by the signature over the canonical payload.
func ComputeCertificateHash(intentHash, proposalHash, authorizationTokenHash, resultHash string, timestamp time.Time, previousCertificateHash string) string {
	material := strings.Join([]string{
		intentHash,
		proposalHash,
		authorizationTokenHash,
		resultHash,
		strconv.FormatInt(timestamp.Unix(), 10),
		previousCertificateHash,
	}, constants.HashFieldSeparator)

	return SHA256Hex(material)
}
