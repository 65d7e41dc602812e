package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberkeep/emberkeep/internal/compress"
	"github.com/emberkeep/emberkeep/internal/config"
	"github.com/emberkeep/emberkeep/internal/crypt"
	"github.com/emberkeep/emberkeep/internal/journal"
	"github.com/emberkeep/emberkeep/internal/save"
	"github.com/emberkeep/emberkeep/internal/store"
	"github.com/emberkeep/emberkeep/internal/testutil"
)

// seedSlot publishes generations into a slot the way the game would,
// then releases the store lock so the command under test can take it.
// Requires the shared test secret in the environment.
func seedSlot(t *testing.T, dir, slot string, saves int) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(dir, log)
	require.NoError(t, err)

	codec, err := compress.New(1 << 20)
	require.NoError(t, err)

	secret, err := crypt.LoadSecret("")
	require.NoError(t, err)
	key, err := crypt.DeriveKey(secret, st.SaltPath())
	require.NoError(t, err)
	cipher, err := crypt.NewCipher(key)
	require.NoError(t, err)

	jnl, err := journal.Open(st.JournalPath())
	require.NoError(t, err)

	cfg := config.Default()
	cfg.SaveDir = dir

	svc, err := save.NewService(st, save.NewPipeline(codec, cipher, nil), cfg, jnl, log)
	require.NoError(t, err)

	for i := 0; i < saves; i++ {
		_, err := svc.Save(context.Background(), slot, testutil.GameState())
		require.NoError(t, err)
	}

	require.NoError(t, jnl.Close())
	codec.Close()
	require.NoError(t, st.Close())
}

func artifactPath(dir, slot string, generation int64) string {
	return filepath.Join(dir, "slots", slot, fmt.Sprintf("%08d.sav", generation))
}

// corruptArtifact flips one ciphertext byte so the artifact still
// parses but fails authentication.
func corruptArtifact(t *testing.T, dir, slot string, generation int64) {
	t.Helper()

	path := artifactPath(dir, slot, generation)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, testutil.FlipByte(data, len(data)-1), 0o600))
}
