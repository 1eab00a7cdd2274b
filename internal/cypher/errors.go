package cypher

import (
	"errors"
	"fmt"
)

// ParseError reports a lexical or syntactic failure.
//
// Position is the character offset of the offending input; Line and
// Column locate the same character (both 1-based).
type ParseError struct {
	Message  string
	Position int
	Line     int
	Column   int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func newParseError(pos Position, format string, args ...any) *ParseError {
	return &ParseError{
		Message:  fmt.Sprintf(format, args...),
		Position: pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
