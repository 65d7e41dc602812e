package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberkeep/emberkeep/internal/crypt"
)

func TestStatsAggregatesOperations(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()
	seedSlot(t, dir, "alpha", 2)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", SaveDir: dir}
	cmd := NewStatsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "OP")
	assert.Contains(t, output, "save")
}

func TestStatsSlotHistory(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()
	seedSlot(t, dir, "alpha", 2)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", SaveDir: dir}
	cmd := NewStatsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--slot", "alpha"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "save")
	assert.Contains(t, output, "ok")
}

func TestStatsEmptyJournal(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", SaveDir: dir}
	cmd := NewStatsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Journal is empty")
}

func TestStatsJournalDisabled(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("journal_enabled: false\n"), 0o600))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", SaveDir: dir, Config: cfgPath}
	cmd := NewStatsCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "journaling is disabled")
}
