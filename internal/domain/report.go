// This file defines the advisory report types returned by ledger verification.
// Reports carry findings; they never carry errors. A broken chain is data,
// not a failure of the verifier.

package domain

import "fmt"

// ChainReport is the result of walking the full hash chain.
type ChainReport struct {
	// Intact is true when every link checks out (an empty ledger is intact).
	Intact bool `json:"intact"`

	// Length is the number of certificates examined.
	Length int `json:"length"`

	// BrokenAt is the zero-based index of the first bad link, -1 when intact.
	BrokenAt int `json:"broken_at"`

	// BrokenID is the certificate id at the break, empty when intact.
	BrokenID string `json:"broken_id,omitempty"`

	// Reason describes the first failure (hash mismatch or link mismatch).
	Reason string `json:"reason,omitempty"`

	// Summary is a one-line human-readable result.
	Summary string `json:"summary"`
}

// IntactChainReport builds the report for a chain with no breaks.
func IntactChainReport(length int) *ChainReport {
	summary := fmt.Sprintf("chain intact: %d certificates verified", length)
	if length == 0 {
		summary = "chain intact: ledger is empty"
	}
	return &ChainReport{
		Intact:   true,
		Length:   length,
		BrokenAt: -1,
		Summary:  summary,
	}
}

// BrokenChainReport builds the report for a chain that fails at index.
func BrokenChainReport(length, index int, id, reason string) *ChainReport {
	return &ChainReport{
		Intact:   false,
		Length:   length,
		BrokenAt: index,
		BrokenID: id,
		Reason:   reason,
		Summary:  fmt.Sprintf("chain broken at index %d (certificate %s): %s", index, id, reason),
	}
}

// CertificateReport is the result of verifying a single certificate.
type CertificateReport struct {
	// ID is the certificate that was verified.
	ID string `json:"id"`

	// SignatureValid is true when the signature verifies against the
	// canonical payload with the embedded public key.
	SignatureValid bool `json:"signature_valid"`

	// HashIntegrity is true when the certificate's own hash recomputes.
	HashIntegrity bool `json:"hash_integrity"`

	// ChainIntact is true when the certificate is reachable from genesis
	// without encountering a broken link.
	ChainIntact bool `json:"chain_intact"`

	// AllValid is true only when all three checks pass.
	AllValid bool `json:"all_valid"`
}

// Finalize sets AllValid from the three component checks and returns the report.
func (r *CertificateReport) Finalize() *CertificateReport {
	r.AllValid = r.SignatureValid && r.HashIntegrity && r.ChainIntact
	return r
}
