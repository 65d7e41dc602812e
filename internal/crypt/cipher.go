package crypt

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher seals and opens artifact payloads with XChaCha20-Poly1305.
// The 24-byte nonce space makes random nonces safe at any realistic save
// rate. A Cipher is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a cipher from a derived key.
//
// Key must be exactly 32 bytes.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("crypt: key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: create cipher: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals the plaintext under a fresh random nonce, binding it to the
// additional data. The nonce is returned alongside the ciphertext; it is
// never reused.
func (c *Cipher) Encrypt(plaintext, additionalData []byte) (nonce, ciphertext []byte, err error) {
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("crypt: generate nonce: %w", err)
	}

	ciphertext = c.aead.Seal(nil, nonce, plaintext, additionalData)
	return nonce, ciphertext, nil
}

// Decrypt opens a sealed payload. Any failure - wrong key, flipped
// ciphertext bit, altered additional data, wrong nonce - surfaces as a
// single authentication error.
func (c *Cipher) Decrypt(nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, &CipherError{
			Kind:    CipherAuthenticationFailed,
			Message: fmt.Sprintf("nonce is %d bytes, cipher expects %d", len(nonce), c.aead.NonceSize()),
		}
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, &CipherError{
			Kind:    CipherAuthenticationFailed,
			Message: "artifact failed authentication",
		}
	}
	return plaintext, nil
}

// NonceSize returns the nonce size in bytes.
func (c *Cipher) NonceSize() int {
	return c.aead.NonceSize()
}

// Overhead returns the authentication tag size in bytes.
func (c *Cipher) Overhead() int {
	return c.aead.Overhead()
}
