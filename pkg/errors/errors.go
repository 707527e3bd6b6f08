package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeInput        ErrorType = "input"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeRateLimit    ErrorType = "rate_limit"
	ErrorTypeAuth         ErrorType = "auth"
	ErrorTypeAccessDenied ErrorType = "access_denied"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeServerError  ErrorType = "server_error"
	ErrorTypeStorage      ErrorType = "storage"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error is a typed error carrying the remote or local failure class.
// Code holds the HTTP status or the VK API error_code when one is known.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error (code %d): %s: %v", e.Type, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a cause
func New(errorType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// Wrap attaches a type and message to an underlying error
func Wrap(err error, errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// TypeOf returns the type of the first *Error in the chain, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err carries the given type anywhere in its chain
func IsType(err error, errorType ErrorType) bool {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type == errorType
	}
	return false
}

// IsFatal reports whether a harvest must stop on this error.
// Access-denied and not-found describe a single item and are never fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch TypeOf(err) {
	case ErrorTypeAccessDenied, ErrorTypeNotFound:
		return false
	default:
		return true
	}
}

// Is and As re-export the standard helpers so callers need a single import
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
