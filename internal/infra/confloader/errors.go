package confloader

import (
	"errors"
	"fmt"
)

// ErrInvalidDSN is matched by every *ValidationError via errors.Is.
var ErrInvalidDSN = errors.New(DSNKey + " must be a PostgreSQL DSN")

// Reasons recorded on a ValidationError.
const (
	ReasonMissing   = "missing"
	ReasonNotString = "not a string"
	ReasonPrefix    = "missing " + DSNPrefix + " prefix"
)

// ValidationError is returned when the merged mapping has no usable
// connection string. Its message is fixed; Reason is for diagnostics.
type ValidationError struct {
	Key    string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return ErrInvalidDSN.Error()
}

// Is implements errors.Is() support.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidDSN
}

// ParseError is returned when the document file exists but cannot be
// decoded into a mapping.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying parser error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDSN)
}
