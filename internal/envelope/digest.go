package envelope

import (
	"crypto/sha256"
	"encoding/hex"
)

// digestDomain prefixes every snapshot checksum. The version suffix enables
// future algorithm migration without ambiguity against old artifacts.
const digestDomain = "emberkeep/snapshot/v1"

// Digest computes the integrity checksum over snapshot plaintext.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
//
// The checksum is taken over the uncompressed, unencrypted snapshot payload,
// so it detects corruption introduced at any later stage of the pipeline.
func Digest(data []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(digestDomain))
	h.Write([]byte{0x00})
	h.Write(data)

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// DigestHex returns the checksum as a hex string for logs and inspection.
func DigestHex(data []byte) string {
	sum := Digest(data)
	return hex.EncodeToString(sum[:])
}
