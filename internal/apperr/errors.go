// Package apperr defines the shared error vocabulary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
)

// ExtractionError reports that the structured-extraction service was
// unreachable, rejected the request, or returned an unusable payload.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("extraction: %v", e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// PlacementError reports a failed file copy or folder creation. It is
// raised after the catalog mutation it documents has already committed,
// so callers treat it as a warning, never a rollback trigger.
type PlacementError struct {
	Category string
	Err      error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("placement into %s: %v", e.Category, e.Err)
}
func (e *PlacementError) Unwrap() error { return e.Err }

// PersistenceError reports a failed mirror or remote write. The
// in-process cache is already updated when one of these occurs; the
// tier simply lags until the next successful sync.
type PersistenceError struct {
	Tier string // "mirror" or "remote"
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence (%s): %v", e.Tier, e.Err)
}
func (e *PersistenceError) Unwrap() error { return e.Err }
