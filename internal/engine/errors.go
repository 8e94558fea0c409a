package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/fieldquery/internal/filter"
	"github.com/roach88/fieldquery/internal/schema"
)

// Code is the stable name of an error category. Codes appear in JSON
// error output, metrics labels and CLI exit handling.
type Code string

const (
	// CodeOK marks a request that succeeded.
	CodeOK Code = "OK"

	// CodeSchemaError indicates an unknown entity or attribute, or a binding
	// that does not match the catalog.
	CodeSchemaError Code = "SCHEMA_ERROR"

	// CodeFilterSyntax indicates malformed filter text or a selector that
	// does not resolve.
	CodeFilterSyntax Code = "FILTER_SYNTAX"

	// CodeFilterType indicates a filter argument that does not fit its
	// attribute's kind.
	CodeFilterType Code = "FILTER_TYPE"

	// CodeInvalidRequest indicates bad pagination or sort parameters.
	CodeInvalidRequest Code = "INVALID_REQUEST"

	// CodeQueryExecution indicates a store failure.
	CodeQueryExecution Code = "QUERY_EXECUTION"

	// CodeInternal is anything else.
	CodeInternal Code = "INTERNAL"
)

// Rejected reports whether the code describes a request the caller can fix,
// as opposed to a failure of the system.
func (c Code) Rejected() bool {
	switch c {
	case CodeFilterSyntax, CodeFilterType, CodeInvalidRequest:
		return true
	}
	return false
}

// InvalidRequestError reports pagination or sort parameters that were
// rejected before any query ran.
type InvalidRequestError struct {
	// Field is the request field at fault ("size", "offset", "sort", ...).
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("%s: %s: %s", CodeInvalidRequest, e.Field, e.Message)
}

// QueryExecutionError reports a store failure. The request is aborted and
// no partial result is returned.
type QueryExecutionError struct {
	// Entity is the root entity of the request.
	Entity string

	// Query is the failed query's kind: root, relation or count.
	Query string

	// Relation names the relation of a failed relation query.
	Relation string

	// Err is the store error.
	Err error
}

// Error implements the error interface.
func (e *QueryExecutionError) Error() string {
	if e.Relation != "" {
		return fmt.Sprintf("%s: %s query %s.%s: %v", CodeQueryExecution, e.Query, e.Entity, e.Relation, e.Err)
	}
	return fmt.Sprintf("%s: %s query %s: %v", CodeQueryExecution, e.Query, e.Entity, e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}

// IsInvalidRequest returns true if the error is an InvalidRequestError.
// Uses errors.As to handle wrapped errors.
func IsInvalidRequest(err error) bool {
	var ie *InvalidRequestError
	return errors.As(err, &ie)
}

// IsQueryExecution returns true if the error is a QueryExecutionError.
// Uses errors.As to handle wrapped errors.
func IsQueryExecution(err error) bool {
	var qe *QueryExecutionError
	return errors.As(err, &qe)
}

// Classify maps an error to its Code. nil is CodeOK.
//
// Filter errors are checked before schema errors: a selector that does not
// resolve is a *filter.SyntaxError wrapping a *schema.Error, and the caller
// must see the rejected filter.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case filter.IsTypeError(err):
		return CodeFilterType
	case filter.IsSyntaxError(err):
		return CodeFilterSyntax
	case IsInvalidRequest(err):
		return CodeInvalidRequest
	case IsQueryExecution(err):
		return CodeQueryExecution
	case schema.IsSchemaError(err):
		return CodeSchemaError
	default:
		return CodeInternal
	}
}

func invalidRequest(field, format string, args ...any) *InvalidRequestError {
	return &InvalidRequestError{Field: field, Message: fmt.Sprintf(format, args...)}
}
