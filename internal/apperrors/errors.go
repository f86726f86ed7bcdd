// Package apperrors defines the error kinds returned by the session issuer,
// the role guard and the lifecycle services.
package apperrors

import "errors"

// Code is a machine-readable error kind.
type Code string

const (
	CodeUnknown            Code = "unknown"
	CodeNotFound           Code = "not_found"
	CodeForbidden          Code = "forbidden"
	CodeInvalidToken       Code = "invalid_token"
	CodeExpiredSession     Code = "expired_session"
	CodeInvalidCredential  Code = "invalid_credential"
	CodeInvalidInput       Code = "invalid_input"
	CodePreconditionFailed Code = "precondition_failed"
	CodeConflict           Code = "conflict"
)

// Error is the domain error type. Message is meant for the user.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithMetadata creates a domain error carrying extra key/value context.
func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeUnknown.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

func NotFound(message string) *Error           { return New(CodeNotFound, message) }
func Forbidden(message string) *Error          { return New(CodeForbidden, message) }
func InvalidInput(message string) *Error       { return New(CodeInvalidInput, message) }
func PreconditionFailed(message string) *Error { return New(CodePreconditionFailed, message) }
func Conflict(message string) *Error           { return New(CodeConflict, message) }
