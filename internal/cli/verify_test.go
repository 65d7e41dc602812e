package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberkeep/emberkeep/internal/crypt"
)

func TestVerifyCleanSlot(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()
	seedSlot(t, dir, "alpha", 2)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", SaveDir: dir}
	cmd := NewVerifyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"alpha"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ 2 generation(s) across 1 slot(s) verified")
}

func TestVerifyFindsCorruption(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()
	seedSlot(t, dir, "alpha", 2)
	corruptArtifact(t, dir, "alpha", 2)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", SaveDir: dir}
	cmd := NewVerifyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"alpha"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✗ Verification failed")
	assert.Contains(t, output, "gen 2")
}

func TestVerifyAllJSONReportsIssues(t *testing.T) {
	t.Setenv(crypt.SecretEnv, "cli-test-secret")
	dir := t.TempDir()
	seedSlot(t, dir, "alpha", 1)
	seedSlot(t, dir, "beta", 1)
	corruptArtifact(t, dir, "beta", 1)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json", SaveDir: dir}
	cmd := NewVerifyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--all"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCorruption, resp.Error.Code)
}

func TestVerifyRequiresTarget(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewVerifyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "requires a slot name or --all")
}

func TestVerifyRejectsSlotWithAll(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewVerifyCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"alpha", "--all"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
