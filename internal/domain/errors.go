// Package domain holds the box-escrow data model: Box, Guardian, Document,
// Invitation, and PushToken, plus the error kinds the core services use to
// signal validation and authorization failures up to the HTTP surface.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a core-level failure so the HTTP surface can map it to a
// status code without the core importing net/http: no per-error Go types,
// just a small closed set of kinds.
type Kind int

const (
	// KindInternal covers store/transport failures not otherwise classified.
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindGone
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindGone:
		return "gone"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus maps a Kind to the status code it corresponds to.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindGone:
		return http.StatusGone
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a core-level failure carrying a Kind plus a human-readable
// message. Core services return *Error (via the constructors below) instead
// of ad-hoc errors.New calls so every failure path is classified exactly
// once, at its origin.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf extracts the Kind of err, defaulting to KindInternal for errors the
// core did not classify (store failures, context cancellation, etc).
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func newErr(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BadRequest(format string, args ...any) *Error   { return newErr(KindBadRequest, format, args...) }
func Unauthorized(format string, args ...any) *Error { return newErr(KindUnauthorized, format, args...) }
func Forbidden(format string, args ...any) *Error    { return newErr(KindForbidden, format, args...) }
func NotFound(format string, args ...any) *Error     { return newErr(KindNotFound, format, args...) }
func Gone(format string, args ...any) *Error         { return newErr(KindGone, format, args...) }
func Conflict(format string, args ...any) *Error     { return newErr(KindConflict, format, args...) }

// Internal wraps an unclassified error (typically from the store, event bus,
// or push transport) as a KindInternal domain error, preserving it for
// errors.Is/As via Unwrap.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}
