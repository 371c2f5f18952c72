// Package ledger implements the append-only certificate store, the
// certificate builder, chain verification, and export bundle assembly.
//
// The ledger is a single JSON envelope file. Mutations (append, purge) are
// serialized through an exclusive lock file; reads never take the lock and
// rely on atomic rename to always see a complete file.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/domain"
	sigilerrors "github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/flock"
)

// fileLock wraps a file descriptor for locking operations.
type fileLock struct {
	path string
	file *os.File
}

// newFileLock creates a new fileLock for the given path.
func newFileLock(path string) *fileLock {
	return &fileLock{path: path}
}

// LockWithContext acquires an exclusive lock with timeout and context
// cancellation support. The acquisition can be interrupted by canceling the
// context, which matters for responsive shutdown handling.
func (fl *fileLock) LockWithContext(ctx context.Context, timeout time.Duration) error {
	var err error
	fl.file, err = os.OpenFile(fl.path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)

	for {
		// Check context cancellation first
		select {
		case <-ctx.Done():
			_ = fl.file.Close()
			return ctx.Err()
		default:
		}

		err = flock.Exclusive(fl.file.Fd())
		if err == nil {
			return nil
		}

		if time.Now().After(deadline) {
			_ = fl.file.Close()
			return fmt.Errorf("%w after %v", sigilerrors.ErrLockTimeout, timeout)
		}

		// Use timer instead of Sleep for context-awareness
		timer := time.NewTimer(constants.LockRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = fl.file.Close()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Unlock releases the lock and closes the file.
func (fl *fileLock) Unlock() error {
	if fl.file == nil {
		return nil
	}
	_ = flock.Unlock(fl.file.Fd())
	return fl.file.Close()
}

// envelope is the on-disk form of the ledger: a versioned wrapper around
// the ordered certificate sequence.
type envelope struct {
	Version      int                   `json:"version"`
	Certificates []*domain.Certificate `json:"certificates"`
}

// Store defines the persistence interface for the certificate ledger.
// The ledger is append-only: certificates are never updated or removed
// individually. Purge is the single, explicit, whole-ledger exception.
type Store interface {
	// Append adds one certificate to the end of the chain.
	// The certificate's previous hash must match the current chain tip.
	Append(ctx context.Context, cert *domain.Certificate) error

	// Get retrieves a certificate by id.
	// Returns ErrCertificateNotFound if no certificate has that id.
	Get(ctx context.Context, id string) (*domain.Certificate, error)

	// Tip returns the chain tip: the newest certificate's hash, or the
	// genesis sentinel when the ledger is empty.
	Tip(ctx context.Context) (string, error)

	// All returns a read-only snapshot of every certificate in chain order.
	// Mutating the returned certificates never affects the ledger.
	All(ctx context.Context) ([]*domain.Certificate, error)

	// Count returns the number of certificates in the ledger.
	Count(ctx context.Context) (int, error)

	// Purge removes the entire ledger. It never removes individual entries.
	Purge(ctx context.Context) error

	// VerifyChain walks the full chain and reports integrity.
	// Advisory: a broken chain is reported, not returned as an error.
	VerifyChain(ctx context.Context) (*domain.ChainReport, error)

	// VerifyCertificate verifies one certificate's signature, hash, and
	// chain reachability. Errors only when id is unknown or the ledger
	// is unreadable.
	VerifyCertificate(ctx context.Context, id string) (*domain.CertificateReport, error)
}

// FileStore implements Store with a single JSON envelope file.
type FileStore struct {
	// path is the full path to the ledger file.
	path string

	// lockTimeout is the maximum wait for the exclusive lock file.
	lockTimeout time.Duration
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithLockTimeout sets a custom lock timeout.
func WithLockTimeout(timeout time.Duration) FileStoreOption {
	return func(fs *FileStore) {
		fs.lockTimeout = timeout
	}
}

// NewFileStore creates a FileStore for the ledger file inside dir.
func NewFileStore(dir string, opts ...FileStoreOption) *FileStore {
	fs := &FileStore{
		path:        filepath.Join(dir, constants.LedgerFileName),
		lockTimeout: constants.DefaultLockTimeout,
	}

	for _, opt := range opts {
		opt(fs)
	}

	return fs
}

// Path returns the ledger file location.
func (fs *FileStore) Path() string {
	return fs.path
}

// Append adds one certificate to the end of the chain.
// The lock is acquired BEFORE the tip check so two concurrent appends can
// never both validate against the same tip and overwrite each other.
func (fs *FileStore) Append(ctx context.Context, cert *domain.Certificate) error {
	log := zerolog.Ctx(ctx)

	if err := cert.Validate(); err != nil {
		return err
	}

	// Ensure directory exists BEFORE acquiring the lock (the lock file needs it)
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o750); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	lock := newFileLock(fs.path + ".lock")
	if err := lock.LockWithContext(ctx, fs.lockTimeout); err != nil {
		return fmt.Errorf("failed to acquire ledger lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	// Re-read under the lock: the tip may have moved since the caller
	// computed the certificate.
	env, err := fs.readEnvelope()
	if err != nil {
		return err
	}

	tip := envelopeTip(env)
	if cert.PreviousCertificateHash != tip {
		return fmt.Errorf("%w: certificate links to %q but the chain tip is %q",
			sigilerrors.ErrChainTipMismatch, cert.PreviousCertificateHash, tip)
	}

	for _, existing := range env.Certificates {
		if existing.ID == cert.ID {
			return fmt.Errorf("%w: duplicate certificate id %s", sigilerrors.ErrInvalidCertificate, cert.ID)
		}
	}

	env.Certificates = append(env.Certificates, cert.Clone())

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	if err := atomicWrite(fs.path, data); err != nil {
		return fmt.Errorf("failed to write ledger file: %w", err)
	}

	log.Debug().
		Str("certificate_id", cert.ID).
		Str("certificate_hash", cert.CertificateHash).
		Int("chain_length", len(env.Certificates)).
		Msg("certificate appended")

	return nil
}

// Get retrieves a certificate by id without taking the lock.
func (fs *FileStore) Get(_ context.Context, id string) (*domain.Certificate, error) {
	env, err := fs.readEnvelope()
	if err != nil {
		return nil, err
	}

	for _, cert := range env.Certificates {
		if cert.ID == id {
			return cert.Clone(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", sigilerrors.ErrCertificateNotFound, id)
}

// Tip returns the chain tip hash, or the genesis sentinel for an empty ledger.
func (fs *FileStore) Tip(_ context.Context) (string, error) {
	env, err := fs.readEnvelope()
	if err != nil {
		return "", err
	}
	return envelopeTip(env), nil
}

// All returns a snapshot of every certificate in chain order.
func (fs *FileStore) All(_ context.Context) ([]*domain.Certificate, error) {
	env, err := fs.readEnvelope()
	if err != nil {
		return nil, err
	}

	certs := make([]*domain.Certificate, 0, len(env.Certificates))
	for _, cert := range env.Certificates {
		certs = append(certs, cert.Clone())
	}
	return certs, nil
}

// Count returns the number of certificates in the ledger.
func (fs *FileStore) Count(_ context.Context) (int, error) {
	env, err := fs.readEnvelope()
	if err != nil {
		return 0, err
	}
	return len(env.Certificates), nil
}

// Purge removes the ledger file. The lock is held so a purge can never
// interleave with an append.
func (fs *FileStore) Purge(ctx context.Context) error {
	log := zerolog.Ctx(ctx)

	// No ledger directory means nothing to purge (and nowhere to put the lock file).
	if _, err := os.Stat(filepath.Dir(fs.path)); os.IsNotExist(err) {
		return nil
	}

	lock := newFileLock(fs.path + ".lock")
	if err := lock.LockWithContext(ctx, fs.lockTimeout); err != nil {
		return fmt.Errorf("failed to acquire ledger lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove ledger file: %w", err)
	}

	log.Info().Str("path", fs.path).Msg("ledger purged")
	return nil
}

// VerifyChain walks the full chain and reports integrity.
func (fs *FileStore) VerifyChain(_ context.Context) (*domain.ChainReport, error) {
	env, err := fs.readEnvelope()
	if err != nil {
		return nil, err
	}
	return walkChain(env.Certificates), nil
}

// VerifyCertificate verifies one certificate's signature, hash, and chain
// reachability.
func (fs *FileStore) VerifyCertificate(_ context.Context, id string) (*domain.CertificateReport, error) {
	env, err := fs.readEnvelope()
	if err != nil {
		return nil, err
	}
	return verifyCertificate(env.Certificates, id)
}

// readEnvelope loads and validates the ledger file. A missing file is an
// empty ledger, not an error. Unparseable content or an unsupported version
// is ErrLedgerCorrupt; a parseable file with tampered certificates is NOT
// corrupt and loads normally so verification can report the damage.
func (fs *FileStore) readEnvelope() (*envelope, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return &envelope{Version: constants.LedgerSchemaVersion}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", sigilerrors.ErrLedgerCorrupt, err)
	}

	if env.Version != constants.LedgerSchemaVersion {
		return nil, fmt.Errorf("%w: unsupported ledger version %d", sigilerrors.ErrLedgerCorrupt, env.Version)
	}

	return &env, nil
}

// envelopeTip returns the chain tip hash of an envelope.
func envelopeTip(env *envelope) string {
	if len(env.Certificates) == 0 {
		return constants.GenesisHash
	}
	return env.Certificates[len(env.Certificates)-1].CertificateHash
}

// atomicWrite writes data to a file atomically using temp file + rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	// Create temp file in the same directory so rename stays on one filesystem
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}() // Clean up on failure

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Ensure data is on disk
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
