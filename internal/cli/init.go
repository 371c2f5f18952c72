// Package cli provides the command-line interface for sigil.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrz1836/sigil/internal/config"
	"github.com/mrz1836/sigil/internal/constants"
	"github.com/mrz1836/sigil/internal/ctxutil"
	"github.com/mrz1836/sigil/internal/tui"
)

// AddInitCommand adds the init command to the root command.
func AddInitCommand(root *cobra.Command) {
	root.AddCommand(newInitCmd())
}

// newInitCmd creates the init command for setting up the sigil home.
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the sigil home directory and device key",
		Long: `Create the sigil home layout (ledger, keys, logs), write the default
configuration, and generate the device signing key if absent.

An existing config file is backed up to config.yaml.backup before being
replaced. The device key is an ECDSA P-256 key pair; with the software
backend the private key lives at <home>/keys/device.key, readable only by
the owning user. Init is idempotent: re-running it never replaces an
existing key.

Exit codes:
  0  initialization succeeded
  1  initialization failed

Examples:
  sigil init
  sigil init --home /tmp/sigil-demo
  sigil init -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd, os.Stdout)
		},
	}
}

// initResult is the JSON output of a successful init.
type initResult struct {
	Status      string `json:"status"`
	Home        string `json:"home"`
	ConfigPath  string `json:"config_path"`
	LedgerDir   string `json:"ledger_dir"`
	KeysDir     string `json:"keys_dir"`
	Fingerprint string `json:"fingerprint"`
	Backend     string `json:"backend"`
}

// runInit executes the init command.
func runInit(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}

	logger := GetLogger()
	outputFormat := cmd.Flag("output").Value.String()
	home := cmd.Flag("home").Value.String()
	tui.CheckNoColor()

	if home == "" {
		var err error
		home, err = config.DefaultHome()
		if err != nil {
			return fmt.Errorf("failed to resolve sigil home: %w", err)
		}
	}

	// Lay out the home directory. The home and keys directories hold
	// private material and get 0700; ledger and logs hold shareable
	// artifacts and get 0750.
	dirs := []struct {
		path string
		perm os.FileMode
	}{
		{home, 0o700},
		{filepath.Join(home, constants.LedgerDir), 0o750},
		{filepath.Join(home, constants.KeysDir), 0o700},
		{filepath.Join(home, constants.LogsDir), 0o750},
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir.path, dir.perm); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir.path, err)
		}
	}

	// Write the default config, backing up any existing file.
	if err := config.WriteDefault(ctx, home); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	// Load the config back so keystore backend and directory overrides
	// from the environment apply to key generation.
	ec, err := ResolveExecutionContext(ctx, home)
	if err != nil {
		return err
	}

	sgn, err := ec.Signer(ctx)
	if err != nil {
		return err
	}

	if _, err = sgn.GenerateKeyIfNeeded(ctx); err != nil {
		return err
	}

	fingerprint, err := sgn.PublicKeyFingerprint(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Str("home", home).
		Str("backend", string(sgn.Backend())).
		Str("fingerprint", fingerprint).
		Msg("sigil initialized")

	result := initResult{
		Status:      "initialized",
		Home:        home,
		ConfigPath:  config.ConfigPath(home),
		LedgerDir:   ec.Config.LedgerDir(home),
		KeysDir:     ec.Config.KeysDir(home),
		Fingerprint: fingerprint,
		Backend:     string(sgn.Backend()),
	}

	out := tui.NewOutput(w, outputFormat)
	if outputFormat == OutputJSON {
		return out.JSON(result)
	}

	out.Success("sigil initialized")
	tui.RenderKeyValues(w, [][2]string{
		{"Home", result.Home},
		{"Config", result.ConfigPath},
		{"Ledger", result.LedgerDir},
		{"Keys", result.KeysDir},
		{"Key fingerprint", result.Fingerprint},
		{"Keystore backend", result.Backend},
	})
	out.Info("Run 'sigil record' to record your first certificate.")
	return nil
}
