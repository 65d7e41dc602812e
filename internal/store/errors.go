package store

import (
	"errors"
	"fmt"
)

// IOError represents a failure touching the save directory.
//
// IOError includes structured fields for diagnostics and recovery: which
// operation failed, on which slot, and on which generation when one is
// involved.
type IOError struct {
	// Kind identifies the error category.
	Kind IOErrorKind

	// Op names the store operation that failed.
	Op string

	// Slot identifies the affected slot, if any.
	Slot string

	// Generation identifies the affected artifact, zero when not relevant.
	Generation int64

	// Err is the underlying cause, if any.
	Err error
}

// IOErrorKind categorizes store failures.
type IOErrorKind string

const (
	// KindNotFound indicates the requested slot or artifact does not exist.
	KindNotFound IOErrorKind = "NOT_FOUND"

	// KindAlreadyExists indicates the target slot or artifact is taken.
	KindAlreadyExists IOErrorKind = "ALREADY_EXISTS"

	// KindLocked indicates another process holds the save directory lock.
	KindLocked IOErrorKind = "LOCKED"

	// KindTimeout indicates the operation ran out of time or was canceled.
	KindTimeout IOErrorKind = "TIMEOUT"

	// KindIO indicates any other filesystem failure.
	KindIO IOErrorKind = "IO"
)

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Slot != "" && e.Generation > 0 {
		return fmt.Sprintf("%s: %s (slot=%s, generation=%d)", e.Kind, e.message(), e.Slot, e.Generation)
	}
	if e.Slot != "" {
		return fmt.Sprintf("%s: %s (slot=%s)", e.Kind, e.message(), e.Slot)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.message())
}

func (e *IOError) message() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *IOError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error means a missing slot or artifact.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe) && ioe.Kind == KindNotFound
}

// IsAlreadyExists returns true if the error means the target is taken.
func IsAlreadyExists(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe) && ioe.Kind == KindAlreadyExists
}

// IsLocked returns true if the error means the store lock is held elsewhere.
func IsLocked(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe) && ioe.Kind == KindLocked
}

// IsTimeout returns true if the error means the operation timed out.
func IsTimeout(err error) bool {
	var ioe *IOError
	return errors.As(err, &ioe) && ioe.Kind == KindTimeout
}

// NewNotFound creates an IOError for a missing slot or artifact.
func NewNotFound(op, slot string, generation int64) *IOError {
	return &IOError{Kind: KindNotFound, Op: op, Slot: slot, Generation: generation}
}
