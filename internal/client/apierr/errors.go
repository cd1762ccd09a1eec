// Package apierr classifies failed API calls into a small, closed set of
// categories so callers can branch on errors.Is instead of inspecting
// transport details or ad-hoc response fields.
package apierr

import (
	"errors"
	"fmt"
)

// Kind is the category of a failed call.
type Kind int

const (
	KindUnexpected Kind = iota
	KindTimeout
	KindNetworkUnreachable
	KindServerRejected
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindNetworkUnreachable:
		return "network unreachable"
	case KindServerRejected:
		return "server rejected"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unexpected"
	}
}

var (
	ErrTimeout      = errors.New("request timed out")
	ErrUnavailable  = errors.New("server unavailable")
	ErrRejected     = errors.New("request rejected")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnexpected   = errors.New("unexpected error")
)

// Error is a classified API failure.
//
// Message, Details and Code carry the server's error, details and error_code
// fields unchanged for KindServerRejected. For other kinds Message is a
// human-readable description.
type Error struct {
	Kind       Kind
	Message    string
	Details    string
	Code       string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", msg, e.Details)
	}
	return msg
}

// Unwrap exposes both the category sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *Error) sentinel() error {
	switch e.Kind {
	case KindTimeout:
		return ErrTimeout
	case KindNetworkUnreachable:
		return ErrUnavailable
	case KindServerRejected:
		return ErrRejected
	case KindUnauthenticated:
		return ErrUnauthorized
	default:
		return ErrUnexpected
	}
}

// ClearsCredential reports whether the caller must drop the stored
// credential and return to the signed-out state.
func (e *Error) ClearsCredential() bool {
	return e.Kind == KindUnauthenticated
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsUnauthenticated reports whether err is (or wraps) an Unauthenticated
// classification.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
