package testutil

// FlipByte returns a copy of data with one bit flipped at offset i.
//
// The input is never mutated, so a test can corrupt the same artifact
// at several offsets independently.
func FlipByte(data []byte, i int) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	out[i] ^= 0x01
	return out
}

// Truncate returns the first n bytes of data as a copy.
func Truncate(data []byte, n int) []byte {
	if n > len(data) {
		n = len(data)
	}
	out := make([]byte, n)
	copy(out, data[:n])
	return out
}
