package itemgate

import (
	"errors"
	"fmt"
)

// Kind classifies a failure at an operation boundary.
type Kind int

const (
	// KindTransport means the request could not complete: network failure,
	// unexpected status, or an undecodable body.
	KindTransport Kind = iota + 1
	// KindAuth means the server rejected the credentials (401).
	KindAuth
	// KindApplication means a structurally successful response carried a
	// domain error in its payload.
	KindApplication
	// KindValidation means a client-side precondition was not met.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindApplication:
		return "application"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every Client operation.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := "request failed"
	if e.Err != nil {
		msg = e.Err.Error()
	} else if e.Status != 0 {
		msg = fmt.Sprintf("status %d", e.Status)
	}
	if e.Kind == KindAuth {
		msg = "not authenticated"
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNotAuthenticated is the cause carried by KindAuth errors.
var ErrNotAuthenticated = errors.New("not authenticated")

// Validation reports a client-side precondition failure.
func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: errors.New(msg)}
}

// Application reports a domain error carried inside a successful response.
func Application(op, msg string) *Error {
	return &Error{Kind: KindApplication, Op: op, Err: errors.New(msg)}
}

// KindOf returns the Kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}
