// Package envelope defines the sealed artifact container written to disk.
//
// An artifact is a fixed 57-byte header followed by two length-prefixed
// sections, nonce and ciphertext:
//
//	magic "EMBK"        4 bytes
//	container version   1 byte
//	schema version      4 bytes, big endian
//	created at          8 bytes, big endian, unix milliseconds
//	plain size          8 bytes, big endian
//	checksum            32 bytes, SHA-256 over snapshot plaintext
//	nonce length        4 bytes, big endian
//	nonce               variable
//	ciphertext length   4 bytes, big endian
//	ciphertext          variable
//
// The header doubles as the AEAD associated data, so tampering with any
// header field makes decryption fail even before the checksum is compared.
// Everything before the nonce is readable without the key, which is what
// lets listing and inspection report schema version, timestamp, and size
// for artifacts that cannot be decrypted.
package envelope

import (
	"bytes"
	"crypto/subtle"
	"encoding/binary"
	"time"
)

// ContainerVersion is the artifact layout version this build writes and the
// newest it will read.
const ContainerVersion byte = 1

// HeaderSize is the fixed portion of an artifact in bytes.
const HeaderSize = 4 + 1 + 4 + 8 + 8 + 32

var magic = [4]byte{'E', 'M', 'B', 'K'}

// Envelope is the parsed form of a sealed artifact.
type Envelope struct {
	SchemaVersion uint32
	CreatedAt     time.Time
	PlainSize     uint64
	Checksum      [32]byte
	Nonce         []byte
	Ciphertext    []byte
}

// Header renders the fixed header. These exact bytes are the associated
// data for the AEAD seal, so Header must be called on the same field values
// for sealing and opening.
func (e *Envelope) Header() []byte {
	buf := make([]byte, 0, HeaderSize)
	buf = append(buf, magic[:]...)
	buf = append(buf, ContainerVersion)
	buf = binary.BigEndian.AppendUint32(buf, e.SchemaVersion)
	buf = binary.BigEndian.AppendUint64(buf, uint64(e.CreatedAt.UnixMilli()))
	buf = binary.BigEndian.AppendUint64(buf, e.PlainSize)
	buf = append(buf, e.Checksum[:]...)
	return buf
}

// Marshal renders the complete artifact.
func (e *Envelope) Marshal() []byte {
	buf := make([]byte, 0, HeaderSize+4+len(e.Nonce)+4+len(e.Ciphertext))
	buf = append(buf, e.Header()...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(e.Nonce)))
	buf = append(buf, e.Nonce...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(e.Ciphertext)))
	buf = append(buf, e.Ciphertext...)
	return buf
}

// Parse reads an artifact back into its parsed form. It validates structure
// only; cryptographic and checksum validation happen later in the open
// pipeline, once the key and plaintext are available.
func Parse(data []byte) (*Envelope, error) {
	if len(data) < HeaderSize {
		return nil, newIntegrityError(IntegrityTruncated,
			"artifact is %d bytes, shorter than the %d byte header", len(data), HeaderSize)
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, newIntegrityError(IntegrityMalformed, "artifact does not start with container magic")
	}
	if version := data[4]; version != ContainerVersion {
		return nil, newIntegrityError(IntegrityVersionUnsupported,
			"container version %d is not supported (this build reads version %d)", version, ContainerVersion)
	}

	e := &Envelope{
		SchemaVersion: binary.BigEndian.Uint32(data[5:9]),
		CreatedAt:     time.UnixMilli(int64(binary.BigEndian.Uint64(data[9:17]))).UTC(),
		PlainSize:     binary.BigEndian.Uint64(data[17:25]),
	}
	copy(e.Checksum[:], data[25:HeaderSize])

	rest := data[HeaderSize:]
	nonce, rest, err := readSection(rest, "nonce")
	if err != nil {
		return nil, err
	}
	ciphertext, rest, err := readSection(rest, "ciphertext")
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, newIntegrityError(IntegrityMalformed, "%d trailing bytes after ciphertext", len(rest))
	}

	e.Nonce = nonce
	e.Ciphertext = ciphertext
	return e, nil
}

func readSection(data []byte, name string) ([]byte, []byte, error) {
	if len(data) < 4 {
		return nil, nil, newIntegrityError(IntegrityTruncated, "artifact ends inside the %s length field", name)
	}
	n := binary.BigEndian.Uint32(data)
	data = data[4:]
	if uint64(n) > uint64(len(data)) {
		return nil, nil, newIntegrityError(IntegrityTruncated,
			"%s declares %d bytes but only %d remain", name, n, len(data))
	}
	return data[:n], data[n:], nil
}

// Verify checks the recovered plaintext against the header checksum.
// The comparison is constant time, though the checksum guards against
// corruption rather than attackers; authenticity comes from the AEAD seal.
func (e *Envelope) Verify(plaintext []byte) error {
	if uint64(len(plaintext)) != e.PlainSize {
		return newIntegrityError(IntegrityChecksumMismatch,
			"plaintext is %d bytes, header declares %d", len(plaintext), e.PlainSize)
	}
	sum := Digest(plaintext)
	if subtle.ConstantTimeCompare(sum[:], e.Checksum[:]) != 1 {
		return newIntegrityError(IntegrityChecksumMismatch, "plaintext does not match header checksum")
	}
	return nil
}

// CheckSchemaVersion rejects artifacts whose snapshot schema is newer than
// the given maximum. Older schemas pass; the snapshot codec upgrades them.
func (e *Envelope) CheckSchemaVersion(max uint32) error {
	if e.SchemaVersion > max {
		return newIntegrityError(IntegrityVersionUnsupported,
			"snapshot schema version %d is newer than supported version %d", e.SchemaVersion, max)
	}
	return nil
}
