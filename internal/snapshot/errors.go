package snapshot

import (
	"errors"
	"fmt"
)

// DecodeErrorKind categorizes decode failures.
type DecodeErrorKind string

const (
	// DecodeUnknownSchema means the payload declares a schema version newer
	// than this build understands.
	DecodeUnknownSchema DecodeErrorKind = "UNKNOWN_SCHEMA"

	// DecodeTruncated means the payload ends before the declared structure
	// is complete.
	DecodeTruncated DecodeErrorKind = "TRUNCATED"

	// DecodeMalformed means the payload is structurally invalid.
	DecodeMalformed DecodeErrorKind = "MALFORMED"
)

// DecodeError reports a payload that cannot be decoded into a graph.
type DecodeError struct {
	Kind    DecodeErrorKind
	Message string
	Version uint32 // set for UNKNOWN_SCHEMA
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsUnknownSchema reports whether err is a decode failure caused by an
// unsupported schema version. Uses errors.As to handle wrapped errors.
func IsUnknownSchema(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Kind == DecodeUnknownSchema
}

// IsTruncated reports whether err is a truncation decode failure.
func IsTruncated(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Kind == DecodeTruncated
}

// IsMalformed reports whether err is a structural decode failure.
func IsMalformed(err error) bool {
	var de *DecodeError
	return errors.As(err, &de) && de.Kind == DecodeMalformed
}

func newTruncated(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: DecodeTruncated, Message: fmt.Sprintf(format, args...)}
}

func newMalformed(format string, args ...any) *DecodeError {
	return &DecodeError{Kind: DecodeMalformed, Message: fmt.Sprintf(format, args...)}
}
