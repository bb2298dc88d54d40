// Package apperr defines the typed business errors used across the service
// so callers can branch on kind instead of matching message strings.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindUnknown is the zero value; it maps to an internal error.
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindAlreadyVoted
	KindNotFound
	KindUnauthenticated
	KindForbidden
	KindInvariantViolation
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAlreadyVoted:
		return "already_voted"
	case KindNotFound:
		return "not_found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindInvariantViolation:
		return "invariant_violation"
	case KindStoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error // optional underlying cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a bare error of the given kind.
func E(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is lets errors.Is match two apperr values by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Unexpected reports whether err belongs to one of the classes that should
// be logged and alerted on rather than treated as a routine outcome.
func Unexpected(err error) bool {
	switch KindOf(err) {
	case KindInvariantViolation, KindStoreUnavailable, KindUnknown:
		return true
	}
	return false
}
