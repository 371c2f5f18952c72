package constants

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChainConstants(t *testing.T) {
	t.Run("GenesisHash is the documented sentinel", func(t *testing.T) {
		assert.Equal(t, "GENESIS", GenesisHash)
	})

	t.Run("HashHexLength matches SHA-256 hex encoding", func(t *testing.T) {
		assert.Equal(t, 64, HashHexLength)
	})

	t.Run("HashFieldSeparator never appears in hex digests", func(t *testing.T) {
		assert.Equal(t, "|", HashFieldSeparator)
		assert.NotContains(t, "0123456789abcdef", HashFieldSeparator)
	})
}

func TestLockConstants(t *testing.T) {
	t.Run("LockRetryInterval is reasonable", func(t *testing.T) {
		assert.Equal(t, 50*time.Millisecond, LockRetryInterval)
		assert.Less(t, LockRetryInterval, time.Second, "should retry quickly")
	})

	t.Run("DefaultLockTimeout allows several retries", func(t *testing.T) {
		assert.Equal(t, 5*time.Second, DefaultLockTimeout)
		assert.Greater(t, DefaultLockTimeout, 10*LockRetryInterval)
	})
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, ".sigil", SigilHome)
	assert.Equal(t, "ledger.json", LedgerFileName)
	assert.Equal(t, "device.key", KeyFileName)
	assert.Equal(t, "config.yaml", GlobalConfigName)
}
