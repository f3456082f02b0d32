// Package errors provides structured error types for the pub application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across sources and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (descriptions, manifests, lockfiles)
//   - *_NOT_FOUND: Resource not found
//   - NOT_A_DIRECTORY: Resource exists but has the wrong kind
//   - INTERNAL_*: Unexpected internal errors
//
// The distinction between PACKAGE_NOT_FOUND and NOT_A_DIRECTORY is load
// bearing: tooling discriminates "the target is missing" from "the target is
// the wrong kind of filesystem entry" when reporting resolution failures.
//
// # Usage
//
//	err := errors.New(errors.ErrCodePackageNotFound, "could not find package %s", name)
//	if errors.Is(err, errors.ErrCodePackageNotFound) {
//	    // Handle missing package
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidManifest, origErr, "failed to read %s", path)
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
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidDescription Code = "INVALID_DESCRIPTION"
	ErrCodeInvalidManifest    Code = "INVALID_MANIFEST"
	ErrCodeInvalidLockfile    Code = "INVALID_LOCKFILE"
	ErrCodeInvalidPackage     Code = "INVALID_PACKAGE"
	ErrCodeInvalidVersion     Code = "INVALID_VERSION"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"

	// Wrong-kind errors
	ErrCodeNotADirectory Code = "NOT_A_DIRECTORY"

	// Identity errors
	ErrCodeNameMismatch Code = "NAME_MISMATCH"

	// State errors
	ErrCodeOutOfDate Code = "OUT_OF_DATE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
