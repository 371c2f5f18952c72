package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/sigil/internal/constants"
)

// Write writes the configuration to <home>/config.yaml.
// If a config file already exists, it creates a backup before overwriting.
// The headerSource is recorded in the generated header comment.
func Write(ctx context.Context, cfg *Config, home, headerSource string) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("refusing to write invalid config: %w", err)
	}

	// Create the home directory with restrictive permissions
	if err := os.MkdirAll(home, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := ConfigPath(home)

	// Check if config file already exists and create backup
	if _, statErr := os.Stat(configPath); statErr == nil {
		backupPath := configPath + ".backup"
		if copyErr := copyFile(configPath, backupPath); copyErr != nil {
			// Log warning but continue - backup is best effort
			zerolog.Ctx(ctx).Warn().
				Err(copyErr).
				Str("backup_path", backupPath).
				Msg("failed to create config backup")
		}
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Add header comment
	header := fmt.Sprintf("# SIGIL Configuration\n# %s on %s\n\n",
		headerSource, time.Now().Format(constants.TimeFormatISO))
	content := header + string(data)

	// Write config file with restrictive permissions
	if err = os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// WriteDefault writes the built-in default configuration to <home>/config.yaml.
func WriteDefault(ctx context.Context, home string) error {
	return Write(ctx, DefaultConfig(), home, "Generated by sigil init")
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) //nolint:gosec // Source is config file
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o600)
}
