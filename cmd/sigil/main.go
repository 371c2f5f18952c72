// Package main is the entry point for the sigil CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/sigil/internal/cli"
	"github.com/mrz1836/sigil/internal/signal"
)

// Build information, injected at build time via ldflags.
//
//nolint:gochecknoglobals // Populated by the linker
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

// run executes the CLI and returns the process exit code. Kept separate
// from main so deferred cleanup runs before os.Exit.
func run() int {
	h := signal.NewHandler(context.Background())
	defer h.Stop()
	defer cli.CloseLogFile()

	err := cli.Execute(h.Context(), cli.BuildInfo{Version: version, Commit: commit, Date: date})
	return cli.ExitCodeForError(err)
}
