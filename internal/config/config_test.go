package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.RetainBackups)
	assert.Equal(t, 5*time.Minute, cfg.AutosaveInterval)
	assert.Equal(t, "auto", cfg.AutosaveSlot)
	assert.Equal(t, "quick", cfg.QuicksaveSlot)
	assert.True(t, cfg.JournalEnabled)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().RetainBackups, cfg.RetainBackups)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"retain_backups: 2\nautosave_interval: 90s\n",
	), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.RetainBackups)
	assert.Equal(t, 90*time.Second, cfg.AutosaveInterval)
	// Untouched keys keep their defaults
	assert.Equal(t, "quick", cfg.QuicksaveSlot)
	assert.True(t, cfg.JournalEnabled)
}

func TestLoadEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retain_backups: 2\n"), 0o600))

	t.Setenv("EMBERKEEP_RETAIN_BACKUPS", "4")
	t.Setenv("EMBERKEEP_AUTOSAVE_SLOT", "nightly")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.RetainBackups)
	assert.Equal(t, "nightly", cfg.AutosaveSlot)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auto_save_slot: oops\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err, "typoed keys must not be silently ignored")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- broken"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "default passes",
			mutate: func(*Config) {},
		},
		{
			name:    "empty save dir",
			mutate:  func(c *Config) { c.SaveDir = "" },
			wantErr: "save_dir",
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.RetainBackups = -1 },
			wantErr: "retain_backups",
		},
		{
			name:    "sub-second autosave interval",
			mutate:  func(c *Config) { c.AutosaveInterval = 100 * time.Millisecond },
			wantErr: "autosave_interval",
		},
		{
			name:    "colliding slots",
			mutate:  func(c *Config) { c.AutosaveSlot, c.QuicksaveSlot = "same", "same" },
			wantErr: "must differ",
		},
		{
			name:    "zero snapshot bound",
			mutate:  func(c *Config) { c.MaxSnapshotBytes = 0 },
			wantErr: "max_snapshot_bytes",
		},
		{
			name:    "zero op timeout",
			mutate:  func(c *Config) { c.OpTimeout = 0 },
			wantErr: "op_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadValidatesResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retain_backups: -3\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retain_backups")
}
