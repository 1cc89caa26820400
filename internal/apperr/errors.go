// Package apperr holds the sentinel errors shared across postmigrate.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidFilename   = errors.New("invalid filename format")
	ErrNoFrontmatter     = errors.New("no frontmatter found")
	ErrMalformedDocument = errors.New("document does not start with a header block")
	ErrUnchanged         = errors.New("source unchanged since last migration")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidInput      = errors.New("invalid input")
	ErrJournalDisabled   = errors.New("journal disabled")
	ErrOutputCollision   = errors.New("output path already claimed by another post")
)

// SkipError reports a per-document skip. The batch keeps going.
type SkipError struct {
	Filename string
	Err      error
	Detail   string
}

func (e *SkipError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Filename, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Filename, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// Reason is the short user-facing skip reason.
func (e *SkipError) Reason() string { return e.Err.Error() }

// Skip wraps err as a SkipError for filename.
func Skip(filename string, err error, detail string) error {
	return &SkipError{Filename: filename, Err: err, Detail: detail}
}

// IsSkip reports whether err is a per-document skip and returns it.
func IsSkip(err error) (*SkipError, bool) {
	var se *SkipError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
