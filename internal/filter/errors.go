package filter

import (
	"errors"
	"fmt"

	"github.com/roach88/fieldquery/internal/value"
)

// SyntaxError reports malformed filter text or a selector that does not
// resolve against the catalog. Pos is a byte offset into Input, or -1 when
// the error is not tied to a position.
type SyntaxError struct {
	Input   string
	Pos     int
	Message string
	Err     error
}

func (e *SyntaxError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("filter syntax error at position %d: %s", e.Pos, e.Message)
	}
	return "filter syntax error: " + e.Message
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// TypeError reports an argument that cannot be used with its selector:
// a value that does not parse as the attribute's kind, or a range operator
// on an unordered kind.
type TypeError struct {
	Selector string
	Kind     value.Kind
	Arg      string
	Message  string
	Err      error
}

func (e *TypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("filter type error: %s (%s): %s: %v", e.Selector, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("filter type error: %s (%s): %s", e.Selector, e.Kind, e.Message)
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

// IsSyntaxError reports whether err wraps a *SyntaxError.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// IsTypeError reports whether err wraps a *TypeError.
func IsTypeError(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}
