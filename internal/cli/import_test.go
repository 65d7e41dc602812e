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
	"github.com/emberkeep/emberkeep/internal/testutil"
)

// exportSlot runs the export command and returns the written file.
func exportSlot(t *testing.T, dir, slot string) string {
	t.Helper()

	outFile := filepath.Join(t.TempDir(), slot+".sav")
	cmd := NewExportCommand(&RootOptions{Format: "text", SaveDir: dir})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{slot, outFile})
	require.NoError(t, cmd.Execute())
	return outFile
}

func TestImportRoundTrip(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()
	seedSlot(t, dir, "alpha", 1)
	file := exportSlot(t, dir, "alpha")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", SaveDir: dir}
	cmd := NewImportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{file, "--slot", "bravo"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "generation 1")

	_, err = os.Stat(artifactPath(dir, "bravo", 1))
	assert.NoError(t, err)
}

func TestImportMissingFile(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", SaveDir: dir}
	cmd := NewImportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{filepath.Join(dir, "missing.sav"), "--slot", "bravo"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to read")
}

func TestImportRejectsCorruptFile(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()
	seedSlot(t, dir, "alpha", 1)
	file := exportSlot(t, dir, "alpha")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, testutil.FlipByte(data, len(data)-1), 0o600))

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", SaveDir: dir}
	cmd := NewImportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{file, "--slot", "bravo"})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, err = os.Stat(filepath.Join(dir, "slots", "bravo"))
	assert.True(t, os.IsNotExist(err))
}

func TestImportRequiresSlotFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewImportCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"whatever.sav"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot")
}
