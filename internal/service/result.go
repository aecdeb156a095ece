package service

import "fmt"

// Result is the outcome of a remote operation: either a success carrying
// the decoded payload or a failure carrying a human-readable message.
type Result[T any] struct {
	ok      bool
	payload T
	message string
}

// Succeed returns a success result.
func Succeed[T any](payload T) Result[T] {
	return Result[T]{ok: true, payload: payload}
}

// Fail returns a failure result.
func Fail[T any](message string) Result[T] {
	return Result[T]{message: message}
}

// Failf returns a failure result with a formatted message.
func Failf[T any](format string, args ...any) Result[T] {
	return Fail[T](fmt.Sprintf(format, args...))
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool { return r.ok }

// Payload returns the decoded response. Zero value on failure.
func (r Result[T]) Payload() T { return r.payload }

// Message returns the failure message. Empty on success.
func (r Result[T]) Message() string { return r.message }

// Unwrap returns the payload and whether the operation succeeded.
func (r Result[T]) Unwrap() (T, bool) { return r.payload, r.ok }

func (r Result[T]) String() string {
	if r.ok {
		return "success"
	}
	return "failure: " + r.message
}
