package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownArea is reported when an included area has no registered pattern.
	// The area is skipped and the scan continues with the remaining areas.
	ErrUnknownArea = errors.New("unknown media area")

	// ErrInvalidPattern is returned when an area pattern does not compile.
	ErrInvalidPattern = errors.New("invalid area pattern")

	// ErrInvalidRoot is returned when the walk root is missing or not a directory.
	ErrInvalidRoot = errors.New("invalid media root")

	// ErrFoldMismatch is returned when the reference set was folded differently
	// from the scan options. Scanning with it would report every file as unused.
	ErrFoldMismatch = errors.New("reference set case folding does not match scan options")

	// ErrAborted signals that the operator declined the confirmation prompt.
	ErrAborted = errors.New("aborted by user")
)

// TransientFileError describes a file that vanished or became unreadable
// between enumeration and the size lookup.
type TransientFileError struct {
	Path string
	Err  error
}

func (e *TransientFileError) Error() string {
	return fmt.Sprintf("skipped %s: %v", e.Path, e.Err)
}

func (e *TransientFileError) Unwrap() error {
	return e.Err
}

// DeletionError describes a single failed delete during removal.
type DeletionError struct {
	Path string
	Err  error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("failed to remove %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error {
	return e.Err
}
