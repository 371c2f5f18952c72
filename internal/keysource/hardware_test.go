package keysource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil/internal/crypto"
)

func TestMemoryProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("reports its name and availability", func(t *testing.T) {
		p := NewMemoryProvider("test-element")
		assert.Equal(t, "test-element", p.Name())
		assert.True(t, p.Available(ctx))

		p.SetAvailable(false)
		assert.False(t, p.Available(ctx))
	})

	t.Run("EnsureKey is idempotent", func(t *testing.T) {
		p := NewMemoryProvider("test-element")

		pub1, err := p.EnsureKey(ctx)
		require.NoError(t, err)

		pub2, err := p.EnsureKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, pub1, pub2)
	})

	t.Run("PublicKey and Sign fail before EnsureKey", func(t *testing.T) {
		p := NewMemoryProvider("test-element")

		_, err := p.PublicKey(ctx)
		require.ErrorIs(t, err, ErrKeyNotFound)

		_, err = p.Sign(ctx, []byte("payload"))
		require.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("signatures verify against the provider public key", func(t *testing.T) {
		p := NewMemoryProvider("test-element")

		pubDER, err := p.EnsureKey(ctx)
		require.NoError(t, err)

		data := []byte("payload")
		sig, err := p.Sign(ctx, data)
		require.NoError(t, err)

		pub, err := crypto.ParsePublicKey(pubDER)
		require.NoError(t, err)
		assert.True(t, crypto.VerifyECDSA(pub, data, sig))
	})
}

func TestHardwareSource(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the provider", func(t *testing.T) {
		p := NewMemoryProvider("secure-element")
		src := NewHardwareSource(p)

		assert.Equal(t, BackendHardware, src.Backend())
		assert.Equal(t, "secure-element", src.ProviderName())

		pub, err := src.EnsureKey(ctx)
		require.NoError(t, err)

		got, err := src.PublicKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, pub, got)

		data := []byte("payload")
		sig, err := src.Sign(ctx, data)
		require.NoError(t, err)

		parsed, err := crypto.ParsePublicKey(pub)
		require.NoError(t, err)
		assert.True(t, crypto.VerifyECDSA(parsed, data, sig))
	})

	t.Run("source and provider agree on the key", func(t *testing.T) {
		p := NewMemoryProvider("secure-element")
		src := NewHardwareSource(p)

		fromSource, err := src.EnsureKey(ctx)
		require.NoError(t, err)

		fromProvider, err := p.PublicKey(ctx)
		require.NoError(t, err)
		assert.Equal(t, fromSource, fromProvider)
	})
}
