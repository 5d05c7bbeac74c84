package domain

import (
	"errors"
	"fmt"
)

// Code classifies a content-validation outcome. Callers translate codes into
// user-facing messages; the document is left unchanged by the rejected call.
type Code string

// Content-validation outcome codes.
const (
	// CodeOutOfRange reports a numeric value outside its inclusive bounds.
	CodeOutOfRange Code = "out_of_range"
	// CodeIntegerOnly reports a value that failed to parse as an integer.
	CodeIntegerOnly Code = "integer_only"
	// CodeFloatOnly reports a value that failed to parse as a float.
	CodeFloatOnly Code = "float_only"
	// CodeAlreadyExists reports a duplicate entity name within its scope.
	CodeAlreadyExists Code = "already_exists"
	// CodeReferenced reports a removal blocked by a live reference.
	CodeReferenced Code = "referenced"
	// CodeEmpty reports a removal that would violate minimum cardinality.
	CodeEmpty Code = "empty"
	// CodeCapacity reports an exhausted id pool.
	CodeCapacity Code = "capacity"
)

// ValidationError is the typed outcome of a rejected content edit. It is a
// soft failure: the caller surfaces a message and the tree stands unchanged.
type ValidationError struct {
	Code   Code
	Path   string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Code)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Path, e.Code, e.Detail)
}

// Is reports whether target is a ValidationError with the same code, so
// callers can match outcomes with errors.Is.
func (e *ValidationError) Is(target error) bool {
	var ve *ValidationError
	if !errors.As(target, &ve) {
		return false
	}
	return ve.Code == e.Code
}

// Validation constructs a ValidationError for the given code and path.
func Validation(code Code, path, detail string) *ValidationError {
	return &ValidationError{Code: code, Path: path, Detail: detail}
}

// IsValidation reports whether err carries the given content-validation code.
func IsValidation(err error, code Code) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Code == code
}

// Structural misuse errors. Correct callers never trigger these; they signal
// a programming error (bad path, wrong node kind) rather than bad user input.
var (
	// ErrPathResolution reports a path that resolved to zero or multiple nodes.
	ErrPathResolution = errors.New("path must resolve to exactly one node")
	// ErrAttributeUndeclared reports an attribute not present on the node.
	ErrAttributeUndeclared = errors.New("attribute not declared on node")
	// ErrLeafExpected reports a value operation against a structural node.
	ErrLeafExpected = errors.New("node does not hold a typed value")
	// ErrEnumViolation reports an enumeration value outside the declared set.
	ErrEnumViolation = errors.New("value outside declared enumeration")
	// ErrBulkShape reports a bulk mapping containing an unsupported value shape.
	ErrBulkShape = errors.New("bulk mapping holds unsupported value shape")
	// ErrSessionActive reports an attempt to nest edit sessions.
	ErrSessionActive = errors.New("edit session already active")
	// ErrUnknownMaterial reports a material name absent from the property database.
	ErrUnknownMaterial = errors.New("material not in property database")
)

// NotFoundError is returned when a registry operation addresses an entity
// name absent from its scope. Like the other structural errors, correct
// callers never trigger it.
type NotFoundError struct {
	Kind EntityKind
	Name string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// ErrCanceled is the distinct cancellation signal for an edit session. A
// session function returning it rolls the session back; the signal is
// absorbed at the session boundary and never propagated to callers.
var ErrCanceled = errors.New("edit session canceled")
