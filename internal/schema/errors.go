package schema

import (
	"errors"
	"fmt"
)

// Error reports an unknown entity or attribute, or an invalid schema
// definition. It indicates a mismatch between the catalog and its caller
// and is fatal to the request that hit it.
type Error struct {
	Entity    string
	Attribute string
	Message   string
}

func (e *Error) Error() string {
	switch {
	case e.Entity != "" && e.Attribute != "":
		return fmt.Sprintf("schema: %s.%s: %s", e.Entity, e.Attribute, e.Message)
	case e.Entity != "":
		return fmt.Sprintf("schema: %s: %s", e.Entity, e.Message)
	default:
		return "schema: " + e.Message
	}
}

// IsSchemaError reports whether err wraps an *Error.
func IsSchemaError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

func unknownEntity(name string) *Error {
	return &Error{Entity: name, Message: "unknown entity"}
}

func unknownAttribute(entity, attr string) *Error {
	return &Error{Entity: entity, Attribute: attr, Message: "unknown attribute"}
}
