package schema

import "fmt"

// ErrorType represents the category of a schema construction failure
type ErrorType int

const (
	// ErrTypeDuplicatePath indicates two accessors share a path
	ErrTypeDuplicatePath ErrorType = iota
	// ErrTypeUnknownKind indicates a catalog entry names no known accessor kind
	ErrTypeUnknownKind
	// ErrTypeMissingParameter indicates a kind-specific parameter was not supplied
	ErrTypeMissingParameter
	// ErrTypeInvalidParameter indicates a parameter is present but unusable
	ErrTypeInvalidParameter
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeDuplicatePath:
		return "Duplicate Path"
	case ErrTypeUnknownKind:
		return "Unknown Kind"
	case ErrTypeMissingParameter:
		return "Missing Parameter"
	case ErrTypeInvalidParameter:
		return "Invalid Parameter"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// Error is returned when a schema cannot be built from its accessors or
// catalog entries. No decode should be attempted with a schema that failed.
type Error struct {
	Type   ErrorType // Category of error
	Schema string    // Schema name, if known
	Path   string    // Offending accessor path, if known
	Err    error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	where := e.Schema
	if e.Path != "" {
		if where != "" {
			where += "/"
		}
		where += e.Path
	}
	if where == "" {
		where = "schema"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, where, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, where)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a schema error
func NewError(typ ErrorType, schema, path string, err error) *Error {
	return &Error{Type: typ, Schema: schema, Path: path, Err: err}
}
