// Package errors provides structured error types for cargo-debstatus.
//
// Every failure that aborts a run carries a machine-readable [Code] so the
// CLI can decide how to report it, while the wrapped cause keeps the
// original error available to errors.Is/As.
//
// # Error Codes
//
//   - CONNECTION_ERROR: the Debian database could not be reached
//   - QUERY_ERROR: a database round trip failed
//   - VERSION_PARSE: a distro or crate version did not parse
//   - CACHE_IO: the on-disk cache could not be read or written
//   - INVALID_METADATA: cargo metadata is too old or inconsistent
//   - INVALID_INPUT / PACKAGE_NOT_FOUND: bad command-line input
//
// # Usage
//
//	err := errors.Wrap(errors.ErrCodeQuery, cause, "query sid for %s", name)
//	if errors.Is(err, errors.ErrCodeQuery) {
//	    // ...
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
	// Input errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"

	// Graph construction errors
	ErrCodeInvalidMetadata Code = "INVALID_METADATA"

	// Classification errors
	ErrCodeConnection   Code = "CONNECTION_ERROR"
	ErrCodeQuery        Code = "QUERY_ERROR"
	ErrCodeVersionParse Code = "VERSION_PARSE"
	ErrCodeCacheIO      Code = "CACHE_IO"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
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
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types the code prefix is dropped but the cause chain is kept,
// since the cause usually names the package or file that failed.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}
