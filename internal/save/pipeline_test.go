package save

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberkeep/emberkeep/internal/compress"
	"github.com/emberkeep/emberkeep/internal/crypt"
	"github.com/emberkeep/emberkeep/internal/envelope"
	"github.com/emberkeep/emberkeep/internal/snapshot"
	"github.com/emberkeep/emberkeep/internal/testutil"
)

var epoch = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testKey() []byte {
	return bytes.Repeat([]byte{0xA7}, 32)
}

func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()

	codec, err := compress.New(1 << 20)
	require.NoError(t, err)
	t.Cleanup(codec.Close)

	cipher, err := crypt.NewCipher(testKey())
	require.NoError(t, err)

	return NewPipeline(codec, cipher, testutil.NewClock(epoch).Now)
}

func TestPipelineRoundTrip(t *testing.T) {
	p := newTestPipeline(t)
	g := testutil.GameState()

	artifact, err := p.Seal(g)
	require.NoError(t, err)

	got, err := p.Open(artifact)
	require.NoError(t, err)
	assert.Equal(t, g, got)
}

func TestPipelineStampsEnvelope(t *testing.T) {
	p := newTestPipeline(t)

	artifact, err := p.Seal(testutil.GameState())
	require.NoError(t, err)

	env, err := envelope.Parse(artifact)
	require.NoError(t, err)
	assert.Equal(t, snapshot.SchemaVersion, env.SchemaVersion)
	assert.True(t, env.CreatedAt.Equal(epoch), "CreatedAt should come from the injected clock")
	assert.Positive(t, env.PlainSize)
	assert.NotEqual(t, [32]byte{}, env.Checksum)
}

func TestPipelineFreshNoncePerSeal(t *testing.T) {
	p := newTestPipeline(t)
	g := testutil.GameState()

	first, err := p.Seal(g)
	require.NoError(t, err)
	second, err := p.Seal(g)
	require.NoError(t, err)

	envFirst, err := envelope.Parse(first)
	require.NoError(t, err)
	envSecond, err := envelope.Parse(second)
	require.NoError(t, err)

	assert.NotEqual(t, envFirst.Nonce, envSecond.Nonce)
	assert.NotEqual(t, envFirst.Ciphertext, envSecond.Ciphertext)
}

func TestPipelineOpenRejectsTamperedHeader(t *testing.T) {
	p := newTestPipeline(t)

	artifact, err := p.Seal(testutil.GameState())
	require.NoError(t, err)

	// Offset 12 sits in the created-at field: the header still parses,
	// but it no longer matches the associated data the seal was bound
	// to.
	_, err = p.Open(testutil.FlipByte(artifact, 12))
	require.Error(t, err)
	assert.True(t, crypt.IsAuthenticationFailed(err))
}

func TestPipelineOpenRejectsTamperedCiphertext(t *testing.T) {
	p := newTestPipeline(t)

	artifact, err := p.Seal(testutil.GameState())
	require.NoError(t, err)

	_, err = p.Open(testutil.FlipByte(artifact, len(artifact)-1))
	require.Error(t, err)
	assert.True(t, crypt.IsAuthenticationFailed(err))
}

func TestPipelineOpenRejectsWrongKey(t *testing.T) {
	p := newTestPipeline(t)

	artifact, err := p.Seal(testutil.GameState())
	require.NoError(t, err)

	codec, err := compress.New(1 << 20)
	require.NoError(t, err)
	t.Cleanup(codec.Close)
	otherCipher, err := crypt.NewCipher(bytes.Repeat([]byte{0x3C}, 32))
	require.NoError(t, err)

	_, err = NewPipeline(codec, otherCipher, nil).Open(artifact)
	require.Error(t, err)
	assert.True(t, crypt.IsAuthenticationFailed(err))
}

func TestPipelineOpenRejectsTruncatedArtifact(t *testing.T) {
	p := newTestPipeline(t)

	artifact, err := p.Seal(testutil.GameState())
	require.NoError(t, err)

	_, err = p.Open(testutil.Truncate(artifact, 20))
	require.Error(t, err)
	assert.True(t, envelope.IsTruncated(err))
}

func TestPipelineOpenRejectsFutureSchema(t *testing.T) {
	codec, err := compress.New(1 << 20)
	require.NoError(t, err)
	t.Cleanup(codec.Close)
	cipher, err := crypt.NewCipher(testKey())
	require.NoError(t, err)

	// An artifact from a future build: internally consistent, just a
	// schema this build does not understand.
	plain, err := snapshot.Encode(testutil.GameState())
	require.NoError(t, err)
	compressed, err := codec.Compress(plain)
	require.NoError(t, err)

	env := &envelope.Envelope{
		SchemaVersion: snapshot.SchemaVersion + 1,
		CreatedAt:     epoch,
		PlainSize:     uint64(len(plain)),
		Checksum:      envelope.Digest(plain),
	}
	env.Nonce, env.Ciphertext, err = cipher.Encrypt(compressed, env.Header())
	require.NoError(t, err)

	_, err = NewPipeline(codec, cipher, nil).Open(env.Marshal())
	require.Error(t, err)
	assert.True(t, envelope.IsVersionUnsupported(err))
}

func TestPipelineOpenRejectsOversizedDeclaration(t *testing.T) {
	codec, err := compress.New(1 << 16)
	require.NoError(t, err)
	t.Cleanup(codec.Close)
	cipher, err := crypt.NewCipher(testKey())
	require.NoError(t, err)
	p := NewPipeline(codec, cipher, nil)

	artifact, err := p.Seal(testutil.GameState())
	require.NoError(t, err)

	// Inflate the declared plaintext size past the ceiling. The precheck
	// must fire before any decryption happens, so the (now broken) AEAD
	// binding is never even consulted.
	env, err := envelope.Parse(artifact)
	require.NoError(t, err)
	env.PlainSize = codec.MaxDecodedBytes() + 1

	_, err = p.Open(env.Marshal())
	require.Error(t, err)
	assert.True(t, compress.IsSizeLimitExceeded(err))
}

func TestPipelineOpenRejectsWrongChecksum(t *testing.T) {
	codec, err := compress.New(1 << 20)
	require.NoError(t, err)
	t.Cleanup(codec.Close)
	cipher, err := crypt.NewCipher(testKey())
	require.NoError(t, err)

	// A checksum that is wrong but consistently sealed, the shape of a
	// sealing-side bug rather than disk corruption. Decryption and
	// decompression succeed; the digest comparison is the layer that
	// catches it.
	plain, err := snapshot.Encode(testutil.GameState())
	require.NoError(t, err)
	compressed, err := codec.Compress(plain)
	require.NoError(t, err)

	env := &envelope.Envelope{
		SchemaVersion: snapshot.SchemaVersion,
		CreatedAt:     epoch,
		PlainSize:     uint64(len(plain)),
		Checksum:      envelope.Digest([]byte("not the snapshot")),
	}
	env.Nonce, env.Ciphertext, err = cipher.Encrypt(compressed, env.Header())
	require.NoError(t, err)

	_, err = NewPipeline(codec, cipher, nil).Open(env.Marshal())
	require.Error(t, err)
	assert.True(t, envelope.IsChecksumMismatch(err))
}

func TestPipelineSealRefusesOversizedSnapshot(t *testing.T) {
	codec, err := compress.New(64)
	require.NoError(t, err)
	t.Cleanup(codec.Close)
	cipher, err := crypt.NewCipher(testKey())
	require.NoError(t, err)

	_, err = NewPipeline(codec, cipher, nil).Seal(testutil.GameState())
	require.Error(t, err)
	assert.True(t, compress.IsSizeLimitExceeded(err))
}
