package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil/internal/keysource"
	"github.com/mrz1836/sigil/internal/tui"
)

func TestKeyCommand_Structure(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "", AddKeyCommand)

	keyCmd := findCommand(t, root, "key")
	assert.Equal(t, "Manage the device signing key", keyCmd.Short)

	findCommand(t, root, "key", "fingerprint")
	findCommand(t, root, "key", "init")
}

func TestRunKeyFingerprint(t *testing.T) {
	home := seedHome(t)

	root := newTestRoot(t, home, AddKeyCommand)
	fpCmd := findCommand(t, root, "key", "fingerprint")

	var buf bytes.Buffer
	require.NoError(t, runKeyFingerprint(context.Background(), fpCmd, &buf))

	out := buf.String()
	assert.Contains(t, out, "Backend")
	assert.Contains(t, out, string(keysource.BackendSoftware))
	assert.Contains(t, out, "Fingerprint")
}

func TestRunKeyFingerprint_JSON(t *testing.T) {
	home := seedHome(t)

	root := newTestRoot(t, home, AddKeyCommand)
	require.NoError(t, root.PersistentFlags().Set("output", "json"))
	fpCmd := findCommand(t, root, "key", "fingerprint")

	var buf bytes.Buffer
	require.NoError(t, runKeyFingerprint(context.Background(), fpCmd, &buf))

	var result keyResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, string(keysource.BackendSoftware), result.Backend)
	assert.NotEmpty(t, result.Fingerprint)
}

func TestRunKeyFingerprint_NoKey(t *testing.T) {
	// A home that was never initialized has no device key
	home := filepath.Join(t.TempDir(), ".sigil")

	root := newTestRoot(t, home, AddKeyCommand)
	fpCmd := findCommand(t, root, "key", "fingerprint")

	var buf bytes.Buffer
	err := runKeyFingerprint(context.Background(), fpCmd, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signing key not found")

	var ae *tui.ActionableError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Suggestion, "sigil init")
}

func TestRunKeyInit_GeneratesKey(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".sigil")

	root := newTestRoot(t, home, AddKeyCommand)
	initCmd := findCommand(t, root, "key", "init")

	var buf bytes.Buffer
	require.NoError(t, runKeyInit(context.Background(), initCmd, &buf))
	assert.Contains(t, buf.String(), "Fingerprint")

	// The fingerprint is now readable without generating again
	fpCmd := findCommand(t, root, "key", "fingerprint")
	var fpBuf bytes.Buffer
	require.NoError(t, runKeyFingerprint(context.Background(), fpCmd, &fpBuf))
}

func TestRunKeyInit_Idempotent(t *testing.T) {
	home := seedHome(t)

	root := newTestRoot(t, home, AddKeyCommand)
	require.NoError(t, root.PersistentFlags().Set("output", "json"))
	initCmd := findCommand(t, root, "key", "init")

	var first bytes.Buffer
	require.NoError(t, runKeyInit(context.Background(), initCmd, &first))

	var second bytes.Buffer
	require.NoError(t, runKeyInit(context.Background(), initCmd, &second))

	var a, b keyResult
	require.NoError(t, json.Unmarshal(first.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Bytes(), &b))
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
}
