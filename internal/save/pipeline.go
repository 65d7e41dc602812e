// Package save is the subsystem's front door. The Pipeline seals graphs
// into artifacts and opens them back, the Service runs slot operations
// end to end against the store, and the Scheduler drives autosaves and
// quick saves off the gameplay loop.
package save

import (
	"fmt"
	"time"

	"github.com/emberkeep/emberkeep/internal/compress"
	"github.com/emberkeep/emberkeep/internal/crypt"
	"github.com/emberkeep/emberkeep/internal/envelope"
	"github.com/emberkeep/emberkeep/internal/snapshot"
	"github.com/emberkeep/emberkeep/internal/state"
)

// Pipeline turns graphs into sealed artifacts and back. Sealing runs
// encode, digest, compress, encrypt, wrap; opening unwinds the same
// stages and re-checks everything the sealing side recorded.
type Pipeline struct {
	codec  *compress.Codec
	cipher *crypt.Cipher
	clock  func() time.Time
}

// NewPipeline builds a pipeline over a compression codec and a cipher.
// clock stamps CreatedAt on sealed artifacts; nil means time.Now.
func NewPipeline(codec *compress.Codec, cipher *crypt.Cipher, clock func() time.Time) *Pipeline {
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{codec: codec, cipher: cipher, clock: clock}
}

// Seal renders g as a sealed artifact ready for staging.
func (p *Pipeline) Seal(g *state.Graph) ([]byte, error) {
	plain, err := snapshot.Encode(g)
	if err != nil {
		return nil, err
	}

	compressed, err := p.codec.Compress(plain)
	if err != nil {
		return nil, err
	}

	env := &envelope.Envelope{
		SchemaVersion: snapshot.SchemaVersion,
		CreatedAt:     p.clock(),
		PlainSize:     uint64(len(plain)),
		Checksum:      envelope.Digest(plain),
	}

	// The header is the AEAD associated data, so every header field must
	// be final before encryption.
	nonce, ciphertext, err := p.cipher.Encrypt(compressed, env.Header())
	if err != nil {
		return nil, err
	}
	env.Nonce = nonce
	env.Ciphertext = ciphertext

	return env.Marshal(), nil
}

// Open unwinds a sealed artifact back into a graph. Failures keep the
// type of the stage that rejected the artifact: *envelope.IntegrityError
// for container and checksum problems, *crypt.CipherError for
// authentication, *compress.CompressionError for frame and size limit
// problems, *snapshot.DecodeError for document problems.
func (p *Pipeline) Open(artifact []byte) (*state.Graph, error) {
	env, err := envelope.Parse(artifact)
	if err != nil {
		return nil, err
	}
	if err := env.CheckSchemaVersion(snapshot.SchemaVersion); err != nil {
		return nil, err
	}

	// The declared size is checked before decryption or decompression
	// allocate anything for it.
	if env.PlainSize > p.codec.MaxDecodedBytes() {
		return nil, &compress.CompressionError{
			Kind:    compress.CompressionSizeLimitExceeded,
			Message: fmt.Sprintf("artifact declares %d plaintext bytes, limit is %d", env.PlainSize, p.codec.MaxDecodedBytes()),
		}
	}

	compressed, err := p.cipher.Decrypt(env.Nonce, env.Ciphertext, env.Header())
	if err != nil {
		return nil, err
	}

	plain, err := p.codec.Decompress(compressed)
	if err != nil {
		return nil, err
	}

	if err := env.Verify(plain); err != nil {
		return nil, err
	}

	return snapshot.Decode(plain)
}
