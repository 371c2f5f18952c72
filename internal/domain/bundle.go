// This file defines the portable export form of a certificate.

package domain

// ExportBundle packages one certificate with everything an independent
// third party needs to verify it offline: the signer public key for the
// signature check and the ordered hash chain proof for the link check.
//
// The bundle contains no plaintext inputs, no raw tokens, and no PII.
// Only hashes, the public key, and the signature.
type ExportBundle struct {
	// Certificate is the exported certificate, verbatim.
	Certificate *Certificate `json:"certificate"`

	// SignerPublicKeyHex is the hex-encoded PKIX DER public key.
	// Duplicated from the certificate so the bundle is self-describing.
	SignerPublicKeyHex string `json:"signer_public_key_hex"`

	// HashChainProof is the ordered list of certificate hashes from the
	// start of the ledger through the exported certificate. The first
	// element is always the literal genesis sentinel, so proof[i+1] is
	// certificate i's hash and proof[i] is its expected previous hash.
	HashChainProof []string `json:"hash_chain_proof"`
}
