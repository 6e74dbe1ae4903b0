// Package repository implements persistence over MySQL.  Sentinel
// errors defined here let handlers distinguish failure scenarios
// without inspecting driver errors; the booking engine's own taxonomy
// (unknown item, token collision, transient conflict) is produced by
// the repositories that implement its interfaces.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot proceed
// because of dependent state.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether a MySQL error is a unique-constraint
// violation (error 1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isTransientConflict reports whether a MySQL error is a deadlock
// (1213) or lock wait timeout (1205), both safe to retry.
func isTransientConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "1213") || strings.Contains(msg, "1205")
}
