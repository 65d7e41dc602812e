package envelope

import (
	"errors"
	"fmt"
)

// IntegrityErrorKind categorizes artifact integrity failures.
type IntegrityErrorKind string

const (
	// IntegrityChecksumMismatch means the plaintext does not hash to the
	// checksum the artifact header declares.
	IntegrityChecksumMismatch IntegrityErrorKind = "CHECKSUM_MISMATCH"

	// IntegrityVersionUnsupported means the artifact declares a container
	// or schema version this build does not understand.
	IntegrityVersionUnsupported IntegrityErrorKind = "VERSION_UNSUPPORTED"

	// IntegrityTruncated means the artifact ends before the declared
	// structure is complete.
	IntegrityTruncated IntegrityErrorKind = "TRUNCATED"

	// IntegrityMalformed means the artifact bytes are structurally invalid.
	IntegrityMalformed IntegrityErrorKind = "MALFORMED"
)

// IntegrityError reports an artifact that fails envelope validation.
type IntegrityError struct {
	Kind    IntegrityErrorKind
	Message string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsChecksumMismatch reports whether err is a checksum integrity failure.
// Uses errors.As to handle wrapped errors.
func IsChecksumMismatch(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie) && ie.Kind == IntegrityChecksumMismatch
}

// IsVersionUnsupported reports whether err is a version integrity failure.
func IsVersionUnsupported(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie) && ie.Kind == IntegrityVersionUnsupported
}

// IsTruncated reports whether err is a truncation integrity failure.
func IsTruncated(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie) && ie.Kind == IntegrityTruncated
}

// IsMalformed reports whether err is a structural integrity failure.
func IsMalformed(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie) && ie.Kind == IntegrityMalformed
}

func newIntegrityError(kind IntegrityErrorKind, format string, args ...any) *IntegrityError {
	return &IntegrityError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
