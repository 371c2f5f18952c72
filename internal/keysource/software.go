package keysource

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/crypto"
)

var (
	// ErrKeyNotFound is returned when an operation needs a key that has not
	// been generated yet.
	ErrKeyNotFound = errors.New("signing key not found")
)

// FileSource is the software keystore: a PKCS#8 ECDSA private key,
// hex-encoded, in a single file under the key directory. The file is
// created 0600 inside a 0700 directory. The decoded private key is cached
// in memory and never exposed through the KeySource interface.
type FileSource struct {
	keyPath string
	mu      sync.Mutex
	key     *ecdsa.PrivateKey // Cached private key
}

// NewFileSource creates a FileSource that stores its key in keyDir.
func NewFileSource(keyDir string) *FileSource {
	return &FileSource{
		keyPath: filepath.Join(keyDir, constants.KeyFileName),
	}
}

// Backend reports BackendSoftware.
func (s *FileSource) Backend() Backend {
	return BackendSoftware
}

// Exists checks if the key file exists on disk.
func (s *FileSource) Exists() bool {
	_, err := os.Stat(s.keyPath)
	return err == nil
}

// EnsureKey loads the key from disk, generating and persisting a new one if
// none exists. Idempotent: every call returns the same public key bytes.
func (s *FileSource) EnsureKey(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(true); err != nil {
		return nil, err
	}
	return crypto.MarshalPublicKey(&s.key.PublicKey)
}

// PublicKey returns the PKIX DER public key bytes.
// Returns ErrKeyNotFound if no key has been generated.
func (s *FileSource) PublicKey(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(false); err != nil {
		return nil, err
	}
	return crypto.MarshalPublicKey(&s.key.PublicKey)
}

// Sign signs data with the stored key using a SHA-256 digest, returning the
// ASN.1 DER signature. Returns ErrKeyNotFound if no key has been generated.
func (s *FileSource) Sign(_ context.Context, data []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(false); err != nil {
		return nil, err
	}
	return crypto.SignECDSA(s.key, data)
}

// loadLocked populates s.key from the cache or from disk.
// When create is true a missing key file is generated; otherwise a missing
// file is ErrKeyNotFound. Callers must hold s.mu.
func (s *FileSource) loadLocked(create bool) error {
	if s.key != nil {
		return nil
	}

	data, err := os.ReadFile(s.keyPath)
	if os.IsNotExist(err) {
		if !create {
			return fmt.Errorf("%w at %s", ErrKeyNotFound, s.keyPath)
		}
		return s.generateLocked()
	} else if err != nil {
		return fmt.Errorf("reading device key: %w", err)
	}

	decoded, err := hex.DecodeString(string(data))
	if err != nil {
		return fmt.Errorf("decoding device key hex: %w", err)
	}

	key, err := crypto.ParsePrivateKey(decoded)
	if err != nil {
		return fmt.Errorf("parsing device key: %w", err)
	}

	s.key = key
	return nil
}

// generateLocked creates a new key pair and persists it. Callers must hold s.mu.
func (s *FileSource) generateLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.keyPath), 0o700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	key, err := crypto.GenerateECDSAKey()
	if err != nil {
		return fmt.Errorf("generating device key: %w", err)
	}

	der, err := crypto.MarshalPrivateKey(key)
	if err != nil {
		return fmt.Errorf("encoding device key: %w", err)
	}

	hexKey := hex.EncodeToString(der)
	if err := os.WriteFile(s.keyPath, []byte(hexKey), 0o600); err != nil {
		return fmt.Errorf("saving device key: %w", err)
	}

	s.key = key
	return nil
}
