// Package errors provides structured error types for corkboard.
//
// Board operations themselves never fail in a user-visible way: invalid stored
// positions are regenerated and failed writes are logged. The errors here cover
// the edges of the system, such as configuration, stores, the REST API and
// the CLI.
//
// # Error Codes
//
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - NETWORK_ERROR, TIMEOUT, RATE_LIMITED: transport failures
//   - STORE_ERROR, INTERNAL_ERROR: backend failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPosition, "item %d: top is NaN", id)
//	if errors.Is(err, errors.ErrCodeInvalidPosition) {
//	    // reject the request
//	}
//
//	err := errors.Wrap(errors.ErrCodeStore, origErr, "update item %d", id)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPosition Code = "INVALID_POSITION"
	ErrCodeInvalidBoard    Code = "INVALID_BOARD"
	ErrCodeInvalidName     Code = "INVALID_NAME"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeItemNotFound  Code = "ITEM_NOT_FOUND"
	ErrCodeStackNotFound Code = "STACK_NOT_FOUND"
	ErrCodeBoardNotFound Code = "BOARD_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Backend errors
	ErrCodeStore       Code = "STORE_ERROR"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// HTTPStatus maps an error code to the status the server responds with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidPosition, ErrCodeInvalidBoard,
		ErrCodeInvalidName, ErrCodeInvalidFormat:
		return 400
	case ErrCodeNotFound, ErrCodeItemNotFound, ErrCodeStackNotFound, ErrCodeBoardNotFound:
		return 404
	case ErrCodeRateLimited:
		return 429
	case ErrCodeUnsupported:
		return 501
	case ErrCodeTimeout:
		return 504
	}
	return 500
}

// Error carries a Code next to a human-readable message. Cause, when set, is
// reachable through errors.Is and errors.As.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// find returns the outermost *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage strips the code prefix and cause from coded errors. Other
// errors are returned as their Error string.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError is returned by the server's rate limiter. RetryAfter is in
// seconds; zero means unknown.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter <= 0 {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
}

// Code lets the server map the error like a coded one.
func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }
