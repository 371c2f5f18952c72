package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/domain"
	sigilerrors "github.com/mrz1836/sigil/internal/errors"
)

// MemoryStore implements Store with an in-memory slice. It backs tests and
// verification over an already-loaded snapshot; nothing is persisted.
type MemoryStore struct {
	mu    sync.RWMutex
	certs []*domain.Certificate
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreFrom creates a MemoryStore seeded with clones of certs.
func NewMemoryStoreFrom(certs []*domain.Certificate) *MemoryStore {
	ms := &MemoryStore{certs: make([]*domain.Certificate, 0, len(certs))}
	for _, cert := range certs {
		ms.certs = append(ms.certs, cert.Clone())
	}
	return ms
}

// Append adds one certificate to the end of the chain.
func (ms *MemoryStore) Append(_ context.Context, cert *domain.Certificate) error {
	if err := cert.Validate(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	tip := constants.GenesisHash
	if len(ms.certs) > 0 {
		tip = ms.certs[len(ms.certs)-1].CertificateHash
	}
	if cert.PreviousCertificateHash != tip {
		return fmt.Errorf("%w: certificate links to %q but the chain tip is %q",
			sigilerrors.ErrChainTipMismatch, cert.PreviousCertificateHash, tip)
	}

	for _, existing := range ms.certs {
		if existing.ID == cert.ID {
			return fmt.Errorf("%w: duplicate certificate id %s", sigilerrors.ErrInvalidCertificate, cert.ID)
		}
	}

	ms.certs = append(ms.certs, cert.Clone())
	return nil
}

// Get retrieves a certificate by id.
func (ms *MemoryStore) Get(_ context.Context, id string) (*domain.Certificate, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for _, cert := range ms.certs {
		if cert.ID == id {
			return cert.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", sigilerrors.ErrCertificateNotFound, id)
}

// Tip returns the chain tip hash, or the genesis sentinel when empty.
func (ms *MemoryStore) Tip(_ context.Context) (string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if len(ms.certs) == 0 {
		return constants.GenesisHash, nil
	}
	return ms.certs[len(ms.certs)-1].CertificateHash, nil
}

// All returns a snapshot of every certificate in chain order.
func (ms *MemoryStore) All(_ context.Context) ([]*domain.Certificate, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	certs := make([]*domain.Certificate, 0, len(ms.certs))
	for _, cert := range ms.certs {
		certs = append(certs, cert.Clone())
	}
	return certs, nil
}

// Count returns the number of certificates.
func (ms *MemoryStore) Count(_ context.Context) (int, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.certs), nil
}

// Purge removes every certificate.
func (ms *MemoryStore) Purge(_ context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.certs = nil
	return nil
}

// VerifyChain walks the full chain and reports integrity.
func (ms *MemoryStore) VerifyChain(_ context.Context) (*domain.ChainReport, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return walkChain(ms.certs), nil
}

// VerifyCertificate verifies one certificate's signature, hash, and chain
// reachability.
func (ms *MemoryStore) VerifyCertificate(_ context.Context, id string) (*domain.CertificateReport, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return verifyCertificate(ms.certs, id)
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*FileStore)(nil)
