// Package errors provides structured error types for nervi generators.
//
// Every input failure names the generator module that rejected it
// ("stairs", "handrail", "spiralStairs", ...) and the offending parameter,
// and carries a machine-readable code:
//   - INVALID_*: Input validation failures
//   - UNIT_CONFUSION: a value that is almost certainly in the wrong unit
//   - DEGENERATE_GEOMETRY: valid inputs whose derived layout is impossible
//   - NOT_FOUND: unknown material, space or reference
//   - INTERNAL: unexpected internal errors
//
// # Usage
//
//	err := errors.Invalid(errors.ErrCodeInvalidMount, "stairs", "mount", "unknown mount %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidMount) {
//	    // Handle validation error
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidRise   Code = "INVALID_RISE"
	ErrCodeInvalidMount  Code = "INVALID_MOUNT"
	ErrCodeInvalidFamily Code = "INVALID_FAMILY"
	ErrCodeInvalidType   Code = "INVALID_TYPE"
	ErrCodeInvalidSides  Code = "INVALID_SIDES"

	// Unit guard
	ErrCodeUnitConfusion Code = "UNIT_CONFUSION"

	// Derived layout errors
	ErrCodeDegenerate Code = "DEGENERATE_GEOMETRY"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code, the responsible module and
// parameter, and an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Module  string // Generator that rejected the input, e.g. "stairs"
	Param   string // Offending parameter, e.g. "totalRise"
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	switch {
	case e.Module != "" && e.Param != "":
		prefix = fmt.Sprintf("%s: %s: %s", e.Module, e.Param, e.Code)
	case e.Module != "":
		prefix = fmt.Sprintf("%s: %s", e.Module, e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Invalid creates an Error attributed to a module parameter.
func Invalid(code Code, module, param, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Module:  module,
		Param:   param,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetParam extracts the offending parameter name, if available.
func GetParam(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Param
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Module != "" && e.Param != "" {
			return fmt.Sprintf("%s: %s: %s", e.Module, e.Param, e.Message)
		}
		return e.Message
	}
	return err.Error()
}
