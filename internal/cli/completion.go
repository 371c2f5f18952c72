package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// errUnsupportedShell indicates the shell is not supported for completion install.
var errUnsupportedShell = stderrors.New("unsupported shell")

// AddCompletionCommand adds the completion command to the root command.
func AddCompletionCommand(root *cobra.Command) {
	// Replace cobra's default completion command with one that can also
	// install the script into the user's shell configuration.
	root.CompletionOptions.DisableDefaultCmd = true

	completionCmd := newCompletionCmd()
	completionCmd.AddCommand(newBashCompletionCmd())
	completionCmd.AddCommand(newZshCompletionCmd())
	completionCmd.AddCommand(newFishCompletionCmd())
	completionCmd.AddCommand(newPowershellCompletionCmd())
	completionCmd.AddCommand(newCompletionInstallCmd())
	root.AddCommand(completionCmd)
}

// newCompletionCmd creates the completion parent command.
func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion",
		Short: "Generate or install shell completions",
		Long: `Generate a completion script for your shell, or install it directly with
'sigil completion install'.

To load completions manually:

  bash:        source <(sigil completion bash)
  zsh:         source <(sigil completion zsh)
  fish:        sigil completion fish | source
  powershell:  sigil completion powershell | Out-String | Invoke-Expression`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newBashCompletionCmd creates the bash completion subcommand.
func newBashCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bash",
		Short: "Generate bash completion script",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenBashCompletion(os.Stdout)
		},
	}
}

// newZshCompletionCmd creates the zsh completion subcommand.
func newZshCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "zsh",
		Short: "Generate zsh completion script",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenZshCompletion(os.Stdout)
		},
	}
}

// newFishCompletionCmd creates the fish completion subcommand.
func newFishCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fish",
		Short: "Generate fish completion script",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenFishCompletion(os.Stdout, true)
		},
	}
}

// newPowershellCompletionCmd creates the powershell completion subcommand.
func newPowershellCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "powershell",
		Short: "Generate powershell completion script",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		},
	}
}

// newCompletionInstallCmd creates the completion install subcommand.
func newCompletionInstallCmd() *cobra.Command {
	var shellName string

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install completions for your shell",
		Long: `Write the completion script into your shell's completion directory and,
for bash and zsh, make sure your rc file loads it. The shell is detected
from $SHELL unless --shell is given.

Examples:
  sigil completion install
  sigil completion install --shell zsh`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompletionInstall(cmd, shellName)
		},
	}

	cmd.Flags().StringVar(&shellName, "shell", "", "shell to install for: bash, zsh or fish (default: autodetect)")

	return cmd
}

// runCompletionInstall writes the completion script and wires up the rc file.
func runCompletionInstall(cmd *cobra.Command, shellName string) error {
	if shellName == "" {
		shellName = detectShell()
	}
	if shellName == "" {
		return fmt.Errorf("%w: could not detect shell from $SHELL, use --shell", errUnsupportedShell)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}

	w := cmd.OutOrStdout()

	switch shellName {
	case "bash":
		if err = installBashCompletions(cmd, home); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "bash completions installed, restart your shell or run: source ~/.bashrc")
	case "zsh":
		if err = installZshCompletions(cmd, home); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "zsh completions installed, restart your shell or run: source ~/.zshrc")
	case "fish":
		if err = installFishCompletions(cmd, home); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(w, "fish completions installed, they load automatically in new sessions")
	default:
		return fmt.Errorf("%w: %s (supported: bash, zsh, fish)", errUnsupportedShell, shellName)
	}

	return nil
}

// detectShell returns the basename of the user's login shell, or "".
func detectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return ""
	}
	return filepath.Base(shell)
}

// installBashCompletions writes the bash script and sources it from ~/.bashrc.
func installBashCompletions(cmd *cobra.Command, home string) error {
	dir := filepath.Join(home, ".bash_completion.d")
	path := filepath.Join(dir, "sigil.bash")
	if err := writeCompletionScript(path, func(f *os.File) error {
		return cmd.Root().GenBashCompletion(f)
	}); err != nil {
		return err
	}

	block := "\n# Sigil shell completions\n[ -f ~/.bash_completion.d/sigil.bash ] && source ~/.bash_completion.d/sigil.bash\n"
	return ensureRCBlock(filepath.Join(home, ".bashrc"), "sigil.bash", block)
}

// installZshCompletions writes the zsh script and adds it to fpath in ~/.zshrc.
func installZshCompletions(cmd *cobra.Command, home string) error {
	dir := filepath.Join(home, ".zsh", "completions")
	path := filepath.Join(dir, "_sigil")
	if err := writeCompletionScript(path, func(f *os.File) error {
		return cmd.Root().GenZshCompletion(f)
	}); err != nil {
		return err
	}

	block := "\n# Sigil shell completions\nfpath=(~/.zsh/completions $fpath)\nautoload -Uz compinit && compinit\n"
	return ensureRCBlock(filepath.Join(home, ".zshrc"), "~/.zsh/completions", block)
}

// installFishCompletions writes the fish script; fish picks it up on its own.
func installFishCompletions(cmd *cobra.Command, home string) error {
	path := filepath.Join(home, ".config", "fish", "completions", "sigil.fish")
	return writeCompletionScript(path, func(f *os.File) error {
		return cmd.Root().GenFishCompletion(f, true)
	})
}

// writeCompletionScript creates the completion file and generates into it.
func writeCompletionScript(path string, generate func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) //nolint:gosec // Path is derived from the user home directory
	if err != nil {
		return fmt.Errorf("creating completion file: %w", err)
	}

	if err = generate(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("generating completion script: %w", err)
	}

	return f.Close()
}

// ensureRCBlock appends block to the rc file unless marker is already present.
func ensureRCBlock(rcPath, marker, block string) error {
	existing, err := os.ReadFile(rcPath) //nolint:gosec // Path is derived from the user home directory
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", filepath.Base(rcPath), err)
	}
	if strings.Contains(string(existing), marker) {
		return nil
	}

	f, err := os.OpenFile(rcPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // Path is derived from the user home directory
	if err != nil {
		return fmt.Errorf("opening %s: %w", filepath.Base(rcPath), err)
	}
	if _, err = f.WriteString(block); err != nil {
		_ = f.Close()
		return fmt.Errorf("updating %s: %w", filepath.Base(rcPath), err)
	}

	return f.Close()
}
