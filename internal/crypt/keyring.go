// Package crypt derives the save encryption key and seals artifacts with
// an AEAD cipher. The key is derived once per process from a local secret;
// artifacts themselves never contain key material.
package crypt

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
)

// SecretEnv is the environment variable consulted first for the local
// secret. A secret file is the fallback for installs that do not want the
// secret in the process environment.
const SecretEnv = "EMBERKEEP_SECRET"

const saltLength = 16

// Argon2id parameters for deriving the encryption key from the secret.
// RFC 9106 first recommended option: 1 pass over 64 MiB with 4 lanes.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

// LoadSecret resolves the local secret: the environment variable wins,
// then the secret file if a path is configured. Whitespace is trimmed so
// trailing newlines in secret files are harmless.
func LoadSecret(secretFile string) ([]byte, error) {
	if env := os.Getenv(SecretEnv); env != "" {
		return []byte(env), nil
	}

	if secretFile != "" {
		raw, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, &CipherError{
				Kind:    CipherKeyUnavailable,
				Message: fmt.Sprintf("read secret file %s: %v", secretFile, err),
			}
		}
		secret := bytes.TrimSpace(raw)
		if len(secret) == 0 {
			return nil, &CipherError{
				Kind:    CipherKeyUnavailable,
				Message: fmt.Sprintf("secret file %s is empty", secretFile),
			}
		}
		return secret, nil
	}

	return nil, &CipherError{
		Kind:    CipherKeyUnavailable,
		Message: fmt.Sprintf("no secret: set %s or configure a secret file", SecretEnv),
	}
}

// DeriveKey derives the 32-byte encryption key from the secret and the
// salt stored at saltPath. The salt is generated on first use and persisted
// next to the saves it protects; it is not secret, it only makes the
// derived key installation-specific.
func DeriveKey(secret []byte, saltPath string) ([]byte, error) {
	if len(secret) == 0 {
		return nil, &CipherError{Kind: CipherKeyUnavailable, Message: "secret is empty"}
	}

	salt, err := loadOrCreateSalt(saltPath)
	if err != nil {
		return nil, err
	}

	return argon2.IDKey(secret, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen), nil
}

func loadOrCreateSalt(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		salt, decErr := hex.DecodeString(string(bytes.TrimSpace(raw)))
		if decErr != nil || len(salt) != saltLength {
			return nil, fmt.Errorf("crypt: salt file %s is corrupt", path)
		}
		return salt, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("crypt: read salt file: %w", err)
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypt: generate salt: %w", err)
	}
	encoded := hex.EncodeToString(salt) + "\n"
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return nil, fmt.Errorf("crypt: write salt file: %w", err)
	}
	return salt, nil
}
