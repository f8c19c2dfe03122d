package docstore

import (
	"errors"
	"fmt"
)

// Sentinel errors for document store operations.
var (
	// ErrNotFound is returned when the document does not exist.
	ErrNotFound = errors.New("docstore: not found")
	// ErrRemote marks transport failures and unexpected responses.
	ErrRemote = errors.New("docstore: remote failure")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op         string // "create", "get", "list", "update", "delete"
	Collection string
	ID         string // If applicable
	Status     int    // HTTP status, 0 on transport failure
	Err        error
}

func (e *Error) Error() string {
	target := e.Collection
	if e.ID != "" {
		target += "/" + e.ID
	}
	if e.Status != 0 {
		return fmt.Sprintf("docstore %s [%s] status %d: %v", e.Op, target, e.Status, e.Err)
	}
	return fmt.Sprintf("docstore %s [%s]: %v", e.Op, target, e.Err)
}

// Unwrap exposes the cause and, for anything but a missing document, ErrRemote.
func (e *Error) Unwrap() []error {
	if errors.Is(e.Err, ErrNotFound) {
		return []error{e.Err}
	}
	return []error{ErrRemote, e.Err}
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
