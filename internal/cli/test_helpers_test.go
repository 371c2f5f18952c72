package cli

// This file contains test utilities and mocks for testing CLI functions.
// These helpers are only available in test files (*_test.go).

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/sigil/internal/domain"
)

// newTestRoot builds a root command with global flags and the given
// subcommand registrations, pointed at home. Stdin is replaced with an
// empty reader so commands that fall back to stdin never block.
func newTestRoot(t *testing.T, home string, register ...func(*cobra.Command)) *cobra.Command {
	t.Helper()

	flags := &GlobalFlags{}
	root := &cobra.Command{Use: "sigil"}
	AddGlobalFlags(root, flags)
	for _, add := range register {
		add(root)
	}
	root.SetIn(strings.NewReader(""))

	if home != "" {
		require.NoError(t, root.PersistentFlags().Set("home", home))
	}

	return root
}

// findCommand locates a subcommand by path (e.g. "key", "fingerprint").
func findCommand(t *testing.T, root *cobra.Command, path ...string) *cobra.Command {
	t.Helper()

	cmd, _, err := root.Find(path)
	require.NoError(t, err)
	require.Equal(t, path[len(path)-1], cmd.Name())
	return cmd
}

// seedHome initializes a fresh sigil home (directories, config, device key)
// under t.TempDir() and returns its path.
func seedHome(t *testing.T) string {
	t.Helper()

	home := filepath.Join(t.TempDir(), ".sigil")
	root := newTestRoot(t, home, AddInitCommand)

	var buf bytes.Buffer
	require.NoError(t, runInit(context.Background(), findCommand(t, root, "init"), &buf))
	return home
}

// testCertificateInput returns a minimal valid input with the given action.
func testCertificateInput(action string) *domain.CertificateInput {
	return &domain.CertificateInput{
		IntentAction:    action,
		ProposalSummary: "approved plan",
		TokenID:         "tok_01",
		TokenSignature:  "a1b2c3d4",
		ApproverID:      "dev@example.com",
		RiskTier:        domain.RiskTierLow,
		ResultStatus:    "success",
	}
}

// recordCertificate appends one certificate to the ledger under home.
func recordCertificate(t *testing.T, home, action string) *domain.Certificate {
	t.Helper()

	ctx := context.Background()
	ec, err := ResolveExecutionContext(ctx, home)
	require.NoError(t, err)

	builder, err := ec.Builder(ctx)
	require.NoError(t, err)

	cert, err := builder.Build(ctx, testCertificateInput(action))
	require.NoError(t, err)
	return cert
}

// mockFormRunner is a test helper that implements the formRunner interface
// (defined in purge.go as a package-level interface).
// Use this to mock Charm Huh forms in tests.
type mockFormRunner struct {
	// runErr is the error to return from Run()
	runErr error

	// onRun is an optional callback executed when Run() is called.
	// Use this to simulate user input by modifying form values.
	onRun func()
}

// Run executes the mock form, optionally calling the onRun callback.
func (m *mockFormRunner) Run() error {
	if m.onRun != nil {
		m.onRun()
	}
	return m.runErr
}

// mockTerminalCheckFunc returns a function that can replace terminalCheck in tests.
// The returned cleanup function should be deferred to restore the original.
//
// Example:
//
//	cleanup := mockTerminalCheckFunc(true)
//	defer cleanup()
func mockTerminalCheckFunc(isTerminal bool) func() {
	original := terminalCheck
	terminalCheck = func() bool { return isTerminal }
	return func() { terminalCheck = original }
}
