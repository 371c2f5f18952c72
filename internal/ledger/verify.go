package ledger

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/domain"
	sigilerrors "github.com/mrz1836/sigil/internal/errors"
)

// walkChain checks every certificate's hash self-integrity and its link to
// the predecessor, in order. The first failing link breaks the walk; the
// report identifies it by index, id, and reason. An empty sequence is
// trivially intact.
func walkChain(certs []*domain.Certificate) *domain.ChainReport {
	expectedPrev := constants.GenesisHash

	for i, cert := range certs {
		if !cert.VerifyHash() {
			return domain.BrokenChainReport(len(certs), i, cert.ID, "certificate hash does not recompute from its fields")
		}
		if cert.PreviousCertificateHash != expectedPrev {
			reason := fmt.Sprintf("previous hash %q does not match predecessor hash %q", cert.PreviousCertificateHash, expectedPrev)
			return domain.BrokenChainReport(len(certs), i, cert.ID, reason)
		}
		expectedPrev = cert.CertificateHash
	}

	return domain.IntactChainReport(len(certs))
}

// verifyCertificate composes the three checks for one certificate:
// signature, hash self-integrity, and reachability from genesis without a
// break. A break after the certificate does not affect its own report.
func verifyCertificate(certs []*domain.Certificate, id string) (*domain.CertificateReport, error) {
	idx := -1
	for i, cert := range certs {
		if cert.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s", sigilerrors.ErrCertificateNotFound, id)
	}

	cert := certs[idx]
	report := &domain.CertificateReport{
		ID:             cert.ID,
		SignatureValid: cert.VerifySignature(),
		HashIntegrity:  cert.VerifyHash(),
		ChainIntact:    walkChain(certs[:idx+1]).Intact,
	}
	return report.Finalize(), nil
}

// SignatureSweep is the result of verifying every signature in the ledger.
type SignatureSweep struct {
	// Total is the number of certificates checked.
	Total int `json:"total"`

	// Valid is the number whose signature verified.
	Valid int `json:"valid"`

	// InvalidIDs lists certificates whose signature failed, in chain order.
	InvalidIDs []string `json:"invalid_ids,omitempty"`
}

// AllValid reports whether every signature verified.
func (s *SignatureSweep) AllValid() bool {
	return len(s.InvalidIDs) == 0
}

// VerifySignatures checks every certificate's signature concurrently,
// bounded by the CPU count. Signature checks are independent pure CPU work,
// so order of execution does not matter; results are collected by index to
// keep the report in chain order.
func VerifySignatures(ctx context.Context, certs []*domain.Certificate) (*SignatureSweep, error) {
	log := zerolog.Ctx(ctx)

	results := make([]bool, len(certs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, cert := range certs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = cert.VerifySignature()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sweep := &SignatureSweep{Total: len(certs)}
	for i, ok := range results {
		if ok {
			sweep.Valid++
		} else {
			sweep.InvalidIDs = append(sweep.InvalidIDs, certs[i].ID)
		}
	}

	log.Debug().
		Int("total", sweep.Total).
		Int("valid", sweep.Valid).
		Int("invalid", len(sweep.InvalidIDs)).
		Msg("signature sweep completed")

	return sweep, nil
}
