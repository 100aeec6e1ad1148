// Package apiresult holds the outcome type shared by every network-backed call.
//
// A Result is either a success carrying a value or an error carrying the HTTP
// status of the failed call (0 when no response came back) and the cause.
package apiresult

import (
	"errors"
	"fmt"
)

var errUnknown = errors.New("unknown error")

// Error is the failure variant of a Result.
type Error struct {
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Cause.Error()
	}
	return fmt.Sprintf("status %d: %v", e.StatusCode, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Result is a success value or an *Error, never both.
type Result[T any] struct {
	value T
	err   *Error
}

// Success wraps a value.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure builds the error variant. A nil cause is replaced by a generic one.
func Failure[T any](statusCode int, cause error) Result[T] {
	if cause == nil {
		cause = errUnknown
	}
	return Result[T]{err: &Error{StatusCode: statusCode, Cause: cause}}
}

// FromError converts a plain error, keeping the status of a wrapped *Error.
func FromError[T any](err error) Result[T] {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return Result[T]{err: apiErr}
	}
	return Failure[T](0, err)
}

func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the success value, or the zero value for an error.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the failure as an error, or nil for a success.
func (r Result[T]) Err() error {
	if r.err == nil {
		return nil
	}
	return r.err
}

// StatusCode is the failed call's status, 0 for successes and transport errors.
func (r Result[T]) StatusCode() int {
	if r.err == nil {
		return 0
	}
	return r.err.StatusCode
}

// Unwrap returns the pair form for callers that prefer (value, error).
func (r Result[T]) Unwrap() (T, error) {
	if r.err != nil {
		var zero T
		return zero, r.err
	}
	return r.value, nil
}

// Map transforms a success value and passes an error through untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.err != nil {
		return Result[U]{err: r.err}
	}
	return Success(f(r.value))
}

// StatusCode extracts the status of any *Error in err's chain.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
