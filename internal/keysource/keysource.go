// Package keysource provides the device signing key backends for the
// certificate ledger. A KeySource owns exactly one ECDSA P-256 key pair;
// private key material never leaves the source that holds it. Callers only
// ever see PKIX DER public key bytes and DER signatures.
package keysource

import (
	"context"
	"fmt"
	"sync"

	sigilerrors "github.com/mrz1836/sigil/internal/errors"
)

// Backend identifies where the private key lives.
type Backend string

const (
	// BackendHardware means the key is held by a hardware provider
	// (secure element, PKCS#11 token) and signing happens there.
	BackendHardware Backend = "hardware"

	// BackendSoftware means the key is held in a file under the sigil home
	// directory, readable only by the owning user.
	BackendSoftware Backend = "software"
)

// Configured backend names accepted by Select. "auto" is a selection policy,
// not a Backend: it resolves to hardware or software at probe time.
const (
	SelectAuto     = "auto"
	SelectHardware = string(BackendHardware)
	SelectSoftware = string(BackendSoftware)
)

// KeySource is the uniform contract over hardware and software keystores.
// All implementations are safe for concurrent use.
type KeySource interface {
	// Backend reports where the private key lives.
	Backend() Backend

	// EnsureKey creates the signing key if absent and returns the PKIX DER
	// public key bytes. Idempotent: a second call returns the same key.
	EnsureKey(ctx context.Context) ([]byte, error)

	// PublicKey returns the PKIX DER public key bytes.
	// Fails if no key exists; it never creates one.
	PublicKey(ctx context.Context) ([]byte, error)

	// Sign signs data with the stored key (SHA-256 digest, ECDSA,
	// ASN.1 DER signature). Fails if no key exists.
	Sign(ctx context.Context, data []byte) ([]byte, error)
}

var (
	providerMu sync.RWMutex
	provider   Provider //nolint:gochecknoglobals // process-wide hardware provider registration
)

// RegisterProvider installs a hardware key provider for Probe and Select
// to consider. Passing nil clears the registration. Last registration wins.
func RegisterProvider(p Provider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

func registeredProvider() Provider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider
}

// Probe selects the best available key source: the registered hardware
// provider when present and usable, otherwise the file-backed software
// source under keyDir.
func Probe(ctx context.Context, keyDir string) KeySource {
	if p := registeredProvider(); p != nil && p.Available(ctx) {
		return NewHardwareSource(p)
	}
	return NewFileSource(keyDir)
}

// Select resolves a configured backend name to a key source.
// "auto" probes for hardware and falls back to software; "hardware"
// requires a usable registered provider; "software" always uses the
// file source under keyDir.
func Select(ctx context.Context, backend, keyDir string) (KeySource, error) {
	switch backend {
	case SelectAuto, "":
		return Probe(ctx, keyDir), nil
	case SelectHardware:
		p := registeredProvider()
		if p == nil || !p.Available(ctx) {
			return nil, sigilerrors.Wrap(sigilerrors.ErrKeystoreUnavailable, "hardware backend requested but no provider is usable")
		}
		return NewHardwareSource(p), nil
	case SelectSoftware:
		return NewFileSource(keyDir), nil
	default:
		return nil, fmt.Errorf("%w: unknown keystore backend %q", sigilerrors.ErrConfigInvalidKeystore, backend)
	}
}
