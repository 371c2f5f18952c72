package ledger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/domain"
	sigilerrors "github.com/mrz1836/sigil/internal/errors"
	"github.com/mrz1836/sigil/internal/flock"
	"github.com/mrz1836/sigil/internal/testutil"
)

func TestNewFileStore(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore(tmpDir)

	assert.Equal(t, filepath.Join(tmpDir, constants.LedgerFileName), store.Path())
}

func TestFileStore_Append(t *testing.T) {
	ctx := context.Background()

	t.Run("appends first certificate", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		cert := factory.Next(t)
		require.NoError(t, store.Append(ctx, cert))

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		tip, err := store.Tip(ctx)
		require.NoError(t, err)
		assert.Equal(t, cert.CertificateHash, tip)

		// Ledger file exists on disk
		_, err = os.Stat(store.Path())
		require.NoError(t, err)
	})

	t.Run("chains multiple certificates", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		for _, cert := range factory.Chain(t, 3) {
			require.NoError(t, store.Append(ctx, cert))
		}

		certs, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, certs, 3)

		assert.Equal(t, constants.GenesisHash, certs[0].PreviousCertificateHash)
		assert.Equal(t, certs[0].CertificateHash, certs[1].PreviousCertificateHash)
		assert.Equal(t, certs[1].CertificateHash, certs[2].PreviousCertificateHash)
	})

	t.Run("persists across store instances", func(t *testing.T) {
		tmpDir := t.TempDir()
		factory := testutil.NewCertificateFactory(t)

		cert := factory.Next(t)
		require.NoError(t, NewFileStore(tmpDir).Append(ctx, cert))

		reopened := NewFileStore(tmpDir)
		got, err := reopened.Get(ctx, cert.ID)
		require.NoError(t, err)
		assert.Equal(t, cert.CertificateHash, got.CertificateHash)
	})

	t.Run("rejects certificate with stale tip", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)

		require.NoError(t, store.Append(ctx, testutil.NewCertificateFactory(t).Next(t)))

		// A second certificate still linking to genesis no longer matches the tip.
		stale := testutil.NewCertificateFactory(t).Next(t)
		err := store.Append(ctx, stale)
		assert.ErrorIs(t, err, sigilerrors.ErrChainTipMismatch)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("rejects duplicate certificate id", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		first := factory.Next(t)
		require.NoError(t, store.Append(ctx, first))

		// Id is outside the certificate hash, so reusing it keeps Validate happy
		// and exercises the dedicated duplicate check.
		second := factory.Next(t)
		second.ID = first.ID

		err := store.Append(ctx, second)
		assert.ErrorIs(t, err, sigilerrors.ErrInvalidCertificate)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("rejects structurally invalid certificate", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)

		cert := testutil.NewCertificateFactory(t).Next(t)
		cert.IntentHash = ""

		err := store.Append(ctx, cert)
		assert.ErrorIs(t, err, sigilerrors.ErrInvalidCertificate)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("caller mutations after append do not reach the ledger", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)

		cert := testutil.NewCertificateFactory(t).Next(t)
		require.NoError(t, store.Append(ctx, cert))

		cert.ResultHash = "mutated-after-append"

		got, err := store.Get(ctx, cert.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated-after-append", got.ResultHash)
	})

	t.Run("concurrent appends against the same tip admit exactly one", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)

		// Two independently signed certificates, both linking to genesis.
		a := testutil.NewCertificateFactory(t).Next(t)
		b := testutil.NewCertificateFactory(t).Next(t)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, cert := range []*domain.Certificate{a, b} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs[i] = store.Append(ctx, cert)
			}()
		}
		wg.Wait()

		var wins int
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, sigilerrors.ErrChainTipMismatch)
		}
		assert.Equal(t, 1, wins)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("readers never observe a partial ledger during appends", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		// Reads do not take the lock; the atomic rename in the writer is what
		// guarantees they always see a complete envelope.
		done := make(chan struct{})
		var readers sync.WaitGroup
		for i := 0; i < 4; i++ {
			readers.Add(1)
			go func() {
				defer readers.Done()
				for {
					select {
					case <-done:
						return
					default:
					}
					report, err := store.VerifyChain(ctx)
					assert.NoError(t, err)
					if report != nil {
						assert.True(t, report.Intact)
					}
				}
			}()
		}

		for i := 0; i < 8; i++ {
			require.NoError(t, store.Append(ctx, factory.Next(t)))
		}
		close(done)
		readers.Wait()

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 8, count)
	})

	t.Run("fails when the lock is held past the timeout", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir, WithLockTimeout(150*time.Millisecond))

		holder, err := os.OpenFile(store.Path()+".lock", os.O_RDWR|os.O_CREATE, 0o600)
		require.NoError(t, err)
		defer func() { _ = holder.Close() }()
		require.NoError(t, flock.Exclusive(holder.Fd()))
		defer func() { _ = flock.Unlock(holder.Fd()) }()

		err = store.Append(ctx, testutil.NewCertificateFactory(t).Next(t))
		assert.ErrorIs(t, err, sigilerrors.ErrLockTimeout)
	})

	t.Run("respects context cancellation while waiting for the lock", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir, WithLockTimeout(5*time.Second))

		holder, err := os.OpenFile(store.Path()+".lock", os.O_RDWR|os.O_CREATE, 0o600)
		require.NoError(t, err)
		defer func() { _ = holder.Close() }()
		require.NoError(t, flock.Exclusive(holder.Fd()))
		defer func() { _ = flock.Unlock(holder.Fd()) }()

		cancelCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()

		err = store.Append(cancelCtx, testutil.NewCertificateFactory(t).Next(t))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestFileStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored certificate", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)

		cert := testutil.NewCertificateFactory(t).Next(t)
		require.NoError(t, store.Append(ctx, cert))

		got, err := store.Get(ctx, cert.ID)
		require.NoError(t, err)
		assert.Equal(t, cert.ID, got.ID)
		assert.Equal(t, cert.Signature, got.Signature)
		assert.True(t, got.VerifySignature())
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		store := NewFileStore(t.TempDir())

		_, err := store.Get(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, sigilerrors.ErrCertificateNotFound)
	})
}

func TestFileStore_Tip(t *testing.T) {
	ctx := context.Background()

	t.Run("genesis for missing ledger file", func(t *testing.T) {
		store := NewFileStore(t.TempDir())

		tip, err := store.Tip(ctx)
		require.NoError(t, err)
		assert.Equal(t, constants.GenesisHash, tip)
	})

	t.Run("tracks the last appended certificate", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		var last *domain.Certificate
		for i := 0; i < 3; i++ {
			last = factory.Next(t)
			require.NoError(t, store.Append(ctx, last))
		}

		tip, err := store.Tip(ctx)
		require.NoError(t, err)
		assert.Equal(t, last.CertificateHash, tip)
	})
}

func TestFileStore_All(t *testing.T) {
	ctx := context.Background()

	t.Run("empty for missing ledger file", func(t *testing.T) {
		store := NewFileStore(t.TempDir())

		certs, err := store.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, certs)
	})

	t.Run("returns certificates in chain order", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		want := factory.Chain(t, 4)
		for _, cert := range want {
			require.NoError(t, store.Append(ctx, cert))
		}

		got, err := store.All(ctx)
		require.NoError(t, err)
		require.Len(t, got, 4)
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
		}
	})

	t.Run("returned slice is a snapshot", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)

		require.NoError(t, store.Append(ctx, testutil.NewCertificateFactory(t).Next(t)))

		first, err := store.All(ctx)
		require.NoError(t, err)
		first[0].CertificateHash = "clobbered"

		second, err := store.All(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, "clobbered", second[0].CertificateHash)
	})
}

func TestFileStore_Purge(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the ledger file", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		for _, cert := range factory.Chain(t, 2) {
			require.NoError(t, store.Append(ctx, cert))
		}

		require.NoError(t, store.Purge(ctx))

		_, err := os.Stat(store.Path())
		assert.True(t, os.IsNotExist(err))

		tip, err := store.Tip(ctx)
		require.NoError(t, err)
		assert.Equal(t, constants.GenesisHash, tip)
	})

	t.Run("no-op when nothing was ever recorded", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "never-created"))
		assert.NoError(t, store.Purge(ctx))
	})

	t.Run("chain restarts at genesis after purge", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)

		require.NoError(t, store.Append(ctx, testutil.NewCertificateFactory(t).Next(t)))
		require.NoError(t, store.Purge(ctx))

		fresh := testutil.NewCertificateFactory(t).Next(t)
		require.NoError(t, store.Append(ctx, fresh))

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestFileStore_CorruptLedger(t *testing.T) {
	ctx := context.Background()

	t.Run("unparseable file is corrupt", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		require.NoError(t, os.WriteFile(store.Path(), []byte("not json at all"), 0o600))

		_, err := store.All(ctx)
		assert.ErrorIs(t, err, sigilerrors.ErrLedgerCorrupt)

		_, err = store.Tip(ctx)
		assert.ErrorIs(t, err, sigilerrors.ErrLedgerCorrupt)
	})

	t.Run("unsupported version is corrupt", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)

		data, err := json.Marshal(map[string]any{"version": 99, "certificates": []any{}})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(store.Path(), data, 0o600))

		_, err = store.Count(ctx)
		assert.ErrorIs(t, err, sigilerrors.ErrLedgerCorrupt)
	})

	t.Run("tampered but parseable ledger still loads", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		for _, cert := range factory.Chain(t, 2) {
			require.NoError(t, store.Append(ctx, cert))
		}

		// Flip a recorded hash directly in the file. The store must keep
		// loading it so verification can point at the break.
		raw, err := os.ReadFile(store.Path())
		require.NoError(t, err)

		var env envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		env.Certificates[0].ResultHash = env.Certificates[1].ResultHash

		tampered, err := json.Marshal(&env)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(store.Path(), tampered, 0o600))

		certs, err := store.All(ctx)
		require.NoError(t, err)
		assert.Len(t, certs, 2)

		report, err := store.VerifyChain(ctx)
		require.NoError(t, err)
		assert.False(t, report.Intact)
		assert.Equal(t, 0, report.BrokenAt)
	})
}

func TestFileStore_VerifyChain(t *testing.T) {
	ctx := context.Background()

	t.Run("empty ledger is trivially intact", func(t *testing.T) {
		store := NewFileStore(t.TempDir())

		report, err := store.VerifyChain(ctx)
		require.NoError(t, err)
		assert.True(t, report.Intact)
		assert.Equal(t, 0, report.Length)
		assert.Equal(t, -1, report.BrokenAt)
	})

	t.Run("intact chain of several certificates", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		for _, cert := range factory.Chain(t, 5) {
			require.NoError(t, store.Append(ctx, cert))
		}

		report, err := store.VerifyChain(ctx)
		require.NoError(t, err)
		assert.True(t, report.Intact)
		assert.Equal(t, 5, report.Length)
	})
}

func TestFileStore_VerifyCertificate(t *testing.T) {
	ctx := context.Background()

	t.Run("fully valid certificate", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewFileStore(tmpDir)
		factory := testutil.NewCertificateFactory(t)

		certs := factory.Chain(t, 3)
		for _, cert := range certs {
			require.NoError(t, store.Append(ctx, cert))
		}

		report, err := store.VerifyCertificate(ctx, certs[1].ID)
		require.NoError(t, err)
		assert.True(t, report.SignatureValid)
		assert.True(t, report.HashIntegrity)
		assert.True(t, report.ChainIntact)
		assert.True(t, report.AllValid)
	})

	t.Run("unknown id", func(t *testing.T) {
		store := NewFileStore(t.TempDir())

		_, err := store.VerifyCertificate(ctx, "missing")
		assert.ErrorIs(t, err, sigilerrors.ErrCertificateNotFound)
	})
}
