// Package cli provides the command-line interface for sigil.
// This file provides execution context resolution shared by all commands.
package cli

import (
	"context"
	"fmt"

	"github.com/mrz1836/sigil/internal/config"
	"github.com/mrz1836/sigil/internal/keysource"
	"github.com/mrz1836/sigil/internal/ledger"
	"github.com/mrz1836/sigil/internal/signer"
)

// ExecutionContext holds the resolved home directory and loaded configuration
// for one command invocation, plus constructors for the collaborators built
// from them. Nothing here is a singleton: every command resolves its own
// context and wires its own store and signer.
type ExecutionContext struct {
	// Home is the resolved sigil home directory.
	Home string

	// Config is the loaded configuration (defaults, YAML file, env).
	Config *config.Config
}

// ResolveExecutionContext resolves the home directory and loads configuration.
// An empty home falls back to SIGIL_HOME, then ~/.sigil.
func ResolveExecutionContext(ctx context.Context, home string) (*ExecutionContext, error) {
	if home == "" {
		var err error
		home, err = config.DefaultHome()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve sigil home: %w", err)
		}
	}

	cfg, err := config.Load(ctx, home)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &ExecutionContext{
		Home:   home,
		Config: cfg,
	}, nil
}

// Store creates the file-backed ledger store for this context.
func (ec *ExecutionContext) Store() *ledger.FileStore {
	return ledger.NewFileStore(
		ec.Config.LedgerDir(ec.Home),
		ledger.WithLockTimeout(ec.Config.Ledger.LockTimeout),
	)
}

// KeySource resolves the configured keystore backend.
func (ec *ExecutionContext) KeySource(ctx context.Context) (keysource.KeySource, error) {
	return keysource.Select(ctx, ec.Config.Keystore.Backend, ec.Config.KeysDir(ec.Home))
}

// Signer creates the certificate signer over the resolved key source.
func (ec *ExecutionContext) Signer(ctx context.Context) (*signer.Signer, error) {
	source, err := ec.KeySource(ctx)
	if err != nil {
		return nil, err
	}
	return signer.New(source), nil
}

// Builder creates the certificate builder over this context's store and signer.
func (ec *ExecutionContext) Builder(ctx context.Context) (*ledger.Builder, error) {
	sgn, err := ec.Signer(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.NewBuilder(ec.Store(), sgn), nil
}

// Exporter creates the bundle exporter over this context's store.
func (ec *ExecutionContext) Exporter() *ledger.Exporter {
	return ledger.NewExporter(ec.Store())
}
