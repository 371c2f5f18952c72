package keysource

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/mrz1836/sigil/internal/crypto"
)

// MemoryProvider is the in-process reference Provider implementation.
// It holds the key in memory only, so nothing survives a restart. Tests
// exercise the hardware code path through it; it is not a real keystore.
type MemoryProvider struct {
	name      string
	available bool
	mu        sync.Mutex
	key       *ecdsa.PrivateKey
}

// NewMemoryProvider creates an available in-memory provider.
func NewMemoryProvider(name string) *MemoryProvider {
	return &MemoryProvider{name: name, available: true}
}

// SetAvailable toggles what Available reports, for probing tests.
func (m *MemoryProvider) SetAvailable(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = v
}

// Name identifies the provider.
func (m *MemoryProvider) Name() string {
	return m.name
}

// Available reports the toggled availability.
func (m *MemoryProvider) Available(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// EnsureKey generates the key on first call and returns the public key bytes.
func (m *MemoryProvider) EnsureKey(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.key == nil {
		key, err := crypto.GenerateECDSAKey()
		if err != nil {
			return nil, fmt.Errorf("generating in-memory key: %w", err)
		}
		m.key = key
	}
	return crypto.MarshalPublicKey(&m.key.PublicKey)
}

// PublicKey returns the public key bytes; fails if EnsureKey has not run.
func (m *MemoryProvider) PublicKey(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.key == nil {
		return nil, fmt.Errorf("%w in provider %q", ErrKeyNotFound, m.name)
	}
	return crypto.MarshalPublicKey(&m.key.PublicKey)
}

// Sign signs data with the in-memory key; fails if EnsureKey has not run.
func (m *MemoryProvider) Sign(_ context.Context, data []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.key == nil {
		return nil, fmt.Errorf("%w in provider %q", ErrKeyNotFound, m.name)
	}
	return crypto.SignECDSA(m.key, data)
}

var _ Provider = (*MemoryProvider)(nil)
