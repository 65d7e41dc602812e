package state

import (
	"errors"
	"fmt"
)

// Source yields a point-in-time snapshot of the live game state.
// Implementations must return a graph the caller owns outright - either a
// deep copy or a freshly built value - so sealing can proceed while the
// game keeps mutating.
type Source interface {
	Snapshot() (*Graph, error)
}

// Sink applies a restored graph to the live game.
//
// Restore is all-or-nothing: on error the live state must be exactly what
// it was before the call. A graph that references entities the current
// build no longer understands fails with *RestoreError.
type Sink interface {
	Restore(*Graph) error
}

// RestoreError reports a graph that cannot be applied to the running game.
// Path identifies the offending entity in dotted form
// (e.g. "inventory.equipment.weapon").
type RestoreError struct {
	Path    string
	Message string
}

func (e *RestoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("RESTORE_REJECTED: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("RESTORE_REJECTED: %s", e.Message)
}

// IsRestoreError reports whether err is a restore rejection.
// Uses errors.As to handle wrapped errors.
func IsRestoreError(err error) bool {
	var re *RestoreError
	return errors.As(err, &re)
}
