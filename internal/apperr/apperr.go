// Package apperr defines the coded error taxonomy shared by the ingest
// pipeline and the HTTP layer, and maps it to status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of failure, independent of the HTTP mapping.
type Code string

const (
	CodeUnauthorized    Code = "E_UNAUTHORIZED"
	CodeRateLimited     Code = "E_RATE_LIMITED"
	CodePayloadTooLarge Code = "E_PAYLOAD_TOO_LARGE"
	CodeParse           Code = "E_PARSE"
	CodeDatabase        Code = "E_DATABASE"
	CodeConfig          Code = "E_CONFIG"
)

// Error carries a coded failure with its HTTP status and, for parse errors,
// the offending line number.
type Error struct {
	Code   Code
	Status int
	Line   int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Code == CodeParse {
		return fmt.Sprintf("%s: line %d: %v", e.Code, e.Line, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthorized builds a 401 error. The cause, if any, is never the token
// itself — callers must not wrap raw header values here.
func Unauthorized() *Error {
	return &Error{Code: CodeUnauthorized, Status: http.StatusUnauthorized}
}

// RateLimited builds a 429 error.
func RateLimited() *Error {
	return &Error{Code: CodeRateLimited, Status: http.StatusTooManyRequests}
}

// PayloadTooLarge builds a 413 error.
func PayloadTooLarge() *Error {
	return &Error{Code: CodePayloadTooLarge, Status: http.StatusRequestEntityTooLarge}
}

// Parse builds a 422 error carrying the 1-based line number that failed to
// decode, and the underlying cause (gzip, UTF-8, JSON, or missing-field).
func Parse(line int, cause error) *Error {
	return &Error{Code: CodeParse, Status: http.StatusUnprocessableEntity, Line: line, Err: cause}
}

// Database builds a 500 error. The cause is suitable for logging but must
// never be echoed back in the response body.
func Database(cause error) *Error {
	return &Error{Code: CodeDatabase, Status: http.StatusInternalServerError, Err: cause}
}

// Config builds a startup configuration error; callers exit the process
// before binding the server when they see one of these.
func Config(cause error) *Error {
	return &Error{Code: CodeConfig, Err: cause}
}

// As is a small helper so callers can test "is this an *Error of code X"
// without repeating errors.As boilerplate.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
