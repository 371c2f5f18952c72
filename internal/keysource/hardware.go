package keysource

import (
	"context"
)

// Provider abstracts a hardware-backed keystore.
// Real implementations would delegate to a platform secure element,
// a PKCS#11 token, or an OS keychain with hardware isolation. The private
// key never crosses the Provider boundary: only public key bytes and
// signatures do.
type Provider interface {
	// Name identifies the provider in logs and `sigil key` output.
	Name() string

	// Available reports whether the underlying keystore can be used right now.
	Available(ctx context.Context) bool

	// EnsureKey creates the signing key if absent and returns the PKIX DER
	// public key bytes. Idempotent.
	EnsureKey(ctx context.Context) ([]byte, error)

	// PublicKey returns the PKIX DER public key bytes; fails if no key exists.
	PublicKey(ctx context.Context) ([]byte, error)

	// Sign signs data with the stored key (SHA-256 digest, ECDSA DER signature).
	Sign(ctx context.Context, data []byte) ([]byte, error)
}

// HardwareSource adapts a Provider to the KeySource interface.
type HardwareSource struct {
	provider Provider
}

// NewHardwareSource wraps a provider as a KeySource.
func NewHardwareSource(p Provider) *HardwareSource {
	return &HardwareSource{provider: p}
}

// Backend reports BackendHardware.
func (h *HardwareSource) Backend() Backend {
	return BackendHardware
}

// ProviderName returns the wrapped provider's name.
func (h *HardwareSource) ProviderName() string {
	return h.provider.Name()
}

// EnsureKey delegates to the provider.
func (h *HardwareSource) EnsureKey(ctx context.Context) ([]byte, error) {
	return h.provider.EnsureKey(ctx)
}

// PublicKey delegates to the provider.
func (h *HardwareSource) PublicKey(ctx context.Context) ([]byte, error) {
	return h.provider.PublicKey(ctx)
}

// Sign delegates to the provider.
func (h *HardwareSource) Sign(ctx context.Context, data []byte) ([]byte, error) {
	return h.provider.Sign(ctx, data)
}
