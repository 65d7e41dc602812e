// Package config resolves the save-subsystem configuration from three
// layers: built-in defaults, an optional YAML file, and environment
// variables, in that order of precedence.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the resolved save-subsystem settings.
type Config struct {
	// SaveDir is the root of the save directory tree.
	SaveDir string `yaml:"save_dir" env:"EMBERKEEP_SAVE_DIR"`

	// RetainBackups is how many prior generations each slot keeps in
	// addition to the current artifact.
	RetainBackups int `yaml:"retain_backups" env:"EMBERKEEP_RETAIN_BACKUPS"`

	// AutosaveInterval is the cadence of the background autosave.
	AutosaveInterval time.Duration `yaml:"autosave_interval" env:"EMBERKEEP_AUTOSAVE_INTERVAL"`

	// AutosaveSlot receives the periodic autosaves.
	AutosaveSlot string `yaml:"autosave_slot" env:"EMBERKEEP_AUTOSAVE_SLOT"`

	// QuicksaveSlot receives quick-saves.
	QuicksaveSlot string `yaml:"quicksave_slot" env:"EMBERKEEP_QUICKSAVE_SLOT"`

	// MaxSnapshotBytes bounds the decoded size of a single snapshot.
	// Artifacts claiming to decompress beyond this are rejected.
	MaxSnapshotBytes uint64 `yaml:"max_snapshot_bytes" env:"EMBERKEEP_MAX_SNAPSHOT_BYTES"`

	// OpTimeout bounds every store operation.
	OpTimeout time.Duration `yaml:"op_timeout" env:"EMBERKEEP_OP_TIMEOUT"`

	// SecretFile optionally points at a file holding the sealing
	// secret. The EMBERKEEP_SECRET environment variable wins over it.
	SecretFile string `yaml:"secret_file" env:"EMBERKEEP_SECRET_FILE"`

	// JournalEnabled controls the operation journal.
	JournalEnabled bool `yaml:"journal_enabled" env:"EMBERKEEP_JOURNAL_ENABLED"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SaveDir:          defaultSaveDir(),
		RetainBackups:    5,
		AutosaveInterval: 5 * time.Minute,
		AutosaveSlot:     "auto",
		QuicksaveSlot:    "quick",
		MaxSnapshotBytes: 64 << 20,
		OpTimeout:        10 * time.Second,
		JournalEnabled:   true,
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".emberkeep", "config.yaml")
}

func defaultSaveDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".emberkeep", "saves")
}

// Load resolves the configuration. A missing config file is not an
// error: defaults and environment variables still apply. A present but
// malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Nothing to merge
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		// Parse YAML with strict field validation (catches typos like
		// "autosave_slot:" vs "auto_save_slot:")
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values no component can work
// with.
func (c *Config) Validate() error {
	if c.SaveDir == "" {
		return fmt.Errorf("invalid config: save_dir must not be empty")
	}
	if c.RetainBackups < 0 {
		return fmt.Errorf("invalid config: retain_backups must not be negative, got %d", c.RetainBackups)
	}
	if c.AutosaveInterval < time.Second {
		return fmt.Errorf("invalid config: autosave_interval must be at least 1s, got %s", c.AutosaveInterval)
	}
	if c.AutosaveSlot == "" || c.QuicksaveSlot == "" {
		return fmt.Errorf("invalid config: autosave_slot and quicksave_slot must not be empty")
	}
	if c.AutosaveSlot == c.QuicksaveSlot {
		return fmt.Errorf("invalid config: autosave_slot and quicksave_slot must differ, both are %q", c.AutosaveSlot)
	}
	if c.MaxSnapshotBytes == 0 {
		return fmt.Errorf("invalid config: max_snapshot_bytes must be positive")
	}
	if c.OpTimeout <= 0 {
		return fmt.Errorf("invalid config: op_timeout must be positive, got %s", c.OpTimeout)
	}
	return nil
}
