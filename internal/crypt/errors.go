package crypt

import (
	"errors"
	"fmt"
)

// CipherErrorKind categorizes encryption failures.
type CipherErrorKind string

const (
	// CipherAuthenticationFailed means an artifact failed AEAD
	// authentication: wrong key, tampered ciphertext, or tampered header.
	CipherAuthenticationFailed CipherErrorKind = "AUTHENTICATION_FAILED"

	// CipherKeyUnavailable means no local secret could be resolved, so no
	// key can be derived.
	CipherKeyUnavailable CipherErrorKind = "KEY_UNAVAILABLE"
)

// CipherError reports an encryption layer failure. Authentication failures
// deliberately carry no detail about what failed to authenticate.
type CipherError struct {
	Kind    CipherErrorKind
	Message string
}

func (e *CipherError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsAuthenticationFailed reports whether err is an AEAD authentication
// failure. Uses errors.As to handle wrapped errors.
func IsAuthenticationFailed(err error) bool {
	var ce *CipherError
	return errors.As(err, &ce) && ce.Kind == CipherAuthenticationFailed
}

// IsKeyUnavailable reports whether err means no secret was available.
func IsKeyUnavailable(err error) bool {
	var ce *CipherError
	return errors.As(err, &ce) && ce.Kind == CipherKeyUnavailable
}
