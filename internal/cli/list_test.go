package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil/internal/domain"
	"github.com/mrz1836/sigil/internal/tui"
)

func TestListCommand_Structure(t *testing.T) {
	t.Parallel()

	root := newTestRoot(t, "", AddListCommand)
	listCmd := findCommand(t, root, "list")

	assert.Contains(t, listCmd.Aliases, "ls")
	assert.NotNil(t, listCmd.Flag("tail"))
}

func TestRunList_EmptyLedger(t *testing.T) {
	home := seedHome(t)
	root := newTestRoot(t, home, AddListCommand)
	listCmd := findCommand(t, root, "list")

	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), listCmd, &buf, 0))
	assert.Contains(t, buf.String(), "No certificates")
}

func TestRunList_EmptyLedgerJSON(t *testing.T) {
	home := seedHome(t)
	root := newTestRoot(t, home, AddListCommand)
	require.NoError(t, root.PersistentFlags().Set("output", "json"))
	listCmd := findCommand(t, root, "list")

	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), listCmd, &buf, 0))
	assert.JSONEq(t, "[]", buf.String())
}

func TestRunList_RendersTable(t *testing.T) {
	home := seedHome(t)
	first := recordCertificate(t, home, "first_action")
	second := recordCertificate(t, home, "second_action")

	root := newTestRoot(t, home, AddListCommand)
	listCmd := findCommand(t, root, "list")

	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), listCmd, &buf, 0))

	out := buf.String()
	assert.Contains(t, out, tui.ShortID(first.ID))
	assert.Contains(t, out, tui.ShortID(second.ID))
}

func TestRunList_TailTruncates(t *testing.T) {
	home := seedHome(t)
	for i := 0; i < 3; i++ {
		recordCertificate(t, home, fmt.Sprintf("action_%d", i))
	}

	root := newTestRoot(t, home, AddListCommand)
	require.NoError(t, root.PersistentFlags().Set("output", "json"))
	listCmd := findCommand(t, root, "list")

	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), listCmd, &buf, 2))

	var certs []*domain.Certificate
	require.NoError(t, json.Unmarshal(buf.Bytes(), &certs))
	assert.Len(t, certs, 2)
}

func TestRunList_TailFooter(t *testing.T) {
	home := seedHome(t)
	for i := 0; i < 3; i++ {
		recordCertificate(t, home, fmt.Sprintf("action_%d", i))
	}

	root := newTestRoot(t, home, AddListCommand)
	listCmd := findCommand(t, root, "list")

	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), listCmd, &buf, 2))
	assert.Contains(t, buf.String(), "3 certificates, showing last 2")
}

func TestRunList_JSONCarriesFullCertificates(t *testing.T) {
	home := seedHome(t)
	cert := recordCertificate(t, home, "json_action")

	root := newTestRoot(t, home, AddListCommand)
	require.NoError(t, root.PersistentFlags().Set("output", "json"))
	listCmd := findCommand(t, root, "list")

	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), listCmd, &buf, 0))

	var certs []*domain.Certificate
	require.NoError(t, json.Unmarshal(buf.Bytes(), &certs))
	require.Len(t, certs, 1)
	assert.Equal(t, cert.ID, certs[0].ID)
	assert.Equal(t, cert.CertificateHash, certs[0].CertificateHash)
	assert.Equal(t, cert.Signature, certs[0].Signature)
}
