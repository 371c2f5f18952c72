package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrNotECDSAKey is returned when parsed key material is not an ECDSA key.
var ErrNotECDSAKey = errors.New("not an ECDSA key")

// GenerateECDSAKey creates a new P-256 ECDSA key pair.
// P-256 is the only curve the ledger format supports.
func GenerateECDSAKey() (*ecdsa.PrivateKey, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating ecdsa key: %w", err)
	}
	return key, nil
}

// SignECDSA signs data with the given private key using a SHA-256 digest.
// Returns the ASN.1 DER-encoded signature.
func SignECDSA(key *ecdsa.PrivateKey, data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	sig, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("ecdsa sign: %w", err)
	}
	return sig, nil
}

// VerifyECDSA verifies an ASN.1 DER-encoded ECDSA signature against data.
func VerifyECDSA(pub *ecdsa.PublicKey, data, signature []byte) bool {
	digest := sha256.Sum256(data)
	return ecdsa.VerifyASN1(pub, digest[:], signature)
}

// MarshalPublicKey encodes an ECDSA public key in PKIX DER format.
func MarshalPublicKey(pub *ecdsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("marshaling public key: %w", err)
	}
	return der, nil
}

// ParsePublicKey decodes a PKIX DER-encoded ECDSA public key.
func ParsePublicKey(der []byte) (*ecdsa.PublicKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}
	pub, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, ErrNotECDSAKey
	}
	return pub, nil
}

// MarshalPrivateKey encodes an ECDSA private key in PKCS#8 DER format.
func MarshalPrivateKey(key *ecdsa.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("marshaling private key: %w", err)
	}
	return der, nil
}

// PublicKeyFingerprint returns the SHA-256 of the PKIX DER public key bytes
// as 64 lowercase hex characters. This is the value recorded as a
// certificate's device_key_id.
func PublicKeyFingerprint(der []byte) string {
	digest := sha256.Sum256(der)
	return hex.EncodeToString(digest[:])
}

// ParsePrivateKey decodes a PKCS#8 DER-encoded ECDSA private key.
func ParsePrivateKey(der []byte) (*ecdsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, ErrNotECDSAKey
	}
	return key, nil
}
