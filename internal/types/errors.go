package types

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a snapshot text block is empty or only
// whitespace. A comparison must not proceed without both snapshots.
var ErrEmptyInput = errors.New("empty input")

// ParseErrorKind classifies parse failures.
type ParseErrorKind string

const (
	// MissingColumn means a required column is absent from the header.
	// The whole snapshot is rejected.
	MissingColumn ParseErrorKind = "MissingColumn"

	// MalformedRow means one data row could not be used. The row is
	// skipped and parsing continues.
	MalformedRow ParseErrorKind = "MalformedRow"
)

// ParseError carries enough context (kind, line, column) for a front end to
// show an actionable message.
type ParseError struct {
	Kind ParseErrorKind

	// Line is the 1-based source line, 0 for header-level errors.
	Line int

	// Column is the offending header name, if any.
	Column string

	// Expected and Got are field counts for arity mismatches.
	Expected int
	Got      int

	// Reason is a short human-readable explanation.
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch {
	case e.Kind == MissingColumn:
		return fmt.Sprintf("%s: required column %q not found in header", e.Kind, e.Column)
	case e.Expected > 0:
		return fmt.Sprintf("%s: line %d: expected %d fields, got %d", e.Kind, e.Line, e.Expected, e.Got)
	case e.Column != "":
		return fmt.Sprintf("%s: line %d: column %q: %s", e.Kind, e.Line, e.Column, e.Reason)
	default:
		return fmt.Sprintf("%s: line %d: %s", e.Kind, e.Line, e.Reason)
	}
}

// IsMissingColumn reports whether err is, or wraps, a MissingColumn error.
func IsMissingColumn(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.Kind == MissingColumn
}
