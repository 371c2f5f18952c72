// Package signer provides the uniform signing facade over the device key
// sources. It fails closed: any keystore or signing problem surfaces as an
// error, never as a missing or degraded signature.
package signer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrz1836/sigil/internal/crypto"
	sigilerrors "github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/keysource"
)

// Signer signs certificate payloads with the device key.
// The zero value is not usable; construct with New.
type Signer struct {
	source keysource.KeySource
}

// New creates a Signer over the given key source.
func New(source keysource.KeySource) *Signer {
	return &Signer{source: source}
}

// Backend reports which key source backend was selected.
func (s *Signer) Backend() keysource.Backend {
	return s.source.Backend()
}

// GenerateKeyIfNeeded creates the device key if absent and returns the PKIX
// DER public key bytes. Idempotent: a second call returns the same key.
func (s *Signer) GenerateKeyIfNeeded(ctx context.Context) ([]byte, error) {
	pub, err := s.source.EnsureKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: ensuring device key: %v", sigilerrors.ErrKeystoreUnavailable, err)
	}
	return pub, nil
}

// PublicKey returns the PKIX DER public key bytes.
// Fails if the key has not been generated.
func (s *Signer) PublicKey(ctx context.Context) ([]byte, error) {
	pub, err := s.source.PublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading device key: %v", sigilerrors.ErrKeystoreUnavailable, err)
	}
	return pub, nil
}

// PublicKeyFingerprint returns the SHA-256 fingerprint of the public key,
// the value recorded as a certificate's device_key_id.
func (s *Signer) PublicKeyFingerprint(ctx context.Context) (string, error) {
	pub, err := s.PublicKey(ctx)
	if err != nil {
		return "", err
	}
	return crypto.PublicKeyFingerprint(pub), nil
}

// Sign signs data with the device key and returns the ASN.1 DER signature.
// A missing key surfaces as ErrKeystoreUnavailable; any other signing
// problem surfaces as ErrSigningFailure.
func (s *Signer) Sign(ctx context.Context, data []byte) ([]byte, error) {
	sig, err := s.source.Sign(ctx, data)
	if err != nil {
		if errors.Is(err, keysource.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %v", sigilerrors.ErrKeystoreUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", sigilerrors.ErrSigningFailure, err)
	}
	if len(sig) == 0 {
		return nil, fmt.Errorf("%w: key source returned an empty signature", sigilerrors.ErrSigningFailure)
	}
	return sig, nil
}
