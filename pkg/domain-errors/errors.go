// Package domainerrors defines coded errors shared by every bounded context.
//
// Codes classify a failure so callers can branch on it (HasCode) without string
// matching. Services translate infrastructure facts (see pkg/platform/sentinel)
// into coded errors at their boundary; transport layers map codes to responses.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeValidation covers value object construction failures (bad input shape).
	CodeValidation Code = "validation"
	// CodeInvalidInput is kept as an alias classification for trust-boundary parsing.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks malformed requests at transport boundaries.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a missing aggregate or record.
	CodeNotFound Code = "not_found"
	// CodeUnauthorized marks failed credential checks.
	CodeUnauthorized Code = "unauthorized"
	// CodeConflict marks illegal status transitions and already-exists failures.
	CodeConflict Code = "conflict"
	// CodeSerialization marks event payload encode/decode failures.
	CodeSerialization Code = "serialization"
	// CodeInfrastructure marks cache/store failures.
	CodeInfrastructure Code = "infrastructure"
	// CodeInvariantViolation marks an aggregate invariant that would be broken.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout marks an operation aborted by a deadline.
	CodeTimeout Code = "timeout"
	// CodeInternal is the fallback for unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to a cause. A nil cause yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost coded error in the chain, or
// CodeInternal when the chain carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether any coded error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is errors.Is, re-exported so callers need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As, re-exported alongside Is.
func As(err error, target any) bool {
	return errors.As(err, target)
}
