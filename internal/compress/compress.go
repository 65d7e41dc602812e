// Package compress wraps zstd for snapshot payloads. Saves are written
// once and read rarely, so the encoder favors ratio over speed, and the
// decoder enforces a hard ceiling on decompressed size so a corrupt or
// hostile frame cannot balloon memory.
package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec compresses and decompresses snapshot payloads. A Codec is safe for
// concurrent use and should be created once per process.
type Codec struct {
	enc        *zstd.Encoder
	dec        *zstd.Decoder
	maxDecoded uint64
}

// New creates a codec whose inputs and outputs are capped at
// maxDecodedBytes of uncompressed data.
func New(maxDecodedBytes uint64) (*Codec, error) {
	if maxDecodedBytes == 0 {
		return nil, fmt.Errorf("compress: max decoded bytes must be positive")
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("compress: create encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedBytes))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("compress: create decoder: %w", err)
	}

	return &Codec{enc: enc, dec: dec, maxDecoded: maxDecodedBytes}, nil
}

// MaxDecodedBytes returns the configured uncompressed ceiling.
func (c *Codec) MaxDecodedBytes() uint64 {
	return c.maxDecoded
}

// Compress produces a zstd frame for the payload. Payloads over the
// uncompressed ceiling are refused before any work happens, so the same
// limit that guards decompression also bounds what can be written.
func (c *Codec) Compress(plaintext []byte) ([]byte, error) {
	if uint64(len(plaintext)) > c.maxDecoded {
		return nil, &CompressionError{
			Kind:    CompressionSizeLimitExceeded,
			Message: fmt.Sprintf("payload is %d bytes, limit is %d", len(plaintext), c.maxDecoded),
		}
	}
	return c.enc.EncodeAll(plaintext, make([]byte, 0, len(plaintext)/2)), nil
}

// Decompress recovers the payload from a zstd frame. Frames that would
// decode past the ceiling fail with SIZE_LIMIT_EXCEEDED; anything else the
// decoder rejects is reported as MALFORMED.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
			return nil, &CompressionError{
				Kind:    CompressionSizeLimitExceeded,
				Message: fmt.Sprintf("frame decodes past the %d byte limit", c.maxDecoded),
			}
		}
		return nil, &CompressionError{
			Kind:    CompressionMalformed,
			Message: fmt.Sprintf("invalid zstd frame: %v", err),
		}
	}
	return out, nil
}

// Close releases the codec's encoder and decoder workers.
func (c *Codec) Close() {
	c.enc.Close()
	c.dec.Close()
}
