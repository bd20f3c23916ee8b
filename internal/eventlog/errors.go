package eventlog

import (
	"errors"
	"fmt"
)

// ParseError reports malformed or empty log input.
// It is not recoverable: the table for that file cannot be built.
type ParseError struct {
	// Path is the log file, empty when reading from a stream.
	Path string

	// Tag is the line tag that was requested.
	Tag string

	// Line is the 1-based line number of the offending line, 0 if none.
	Line int

	// Message describes the problem.
	Message string
}

func (e *ParseError) Error() string {
	src := e.Path
	if src == "" {
		src = "<stream>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d (tag %q): %s", src, e.Line, e.Tag, e.Message)
	}
	return fmt.Sprintf("parse %s (tag %q): %s", src, e.Tag, e.Message)
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// ErrUnknownColumn is returned when a requested column is not in the table.
var ErrUnknownColumn = errors.New("eventlog: unknown column")

// ErrNotIntegral is returned when integer access is requested for a float column.
var ErrNotIntegral = errors.New("eventlog: column is not integral")
