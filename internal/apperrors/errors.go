package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a failure so the HTTP boundary can translate it into
// exactly one status code.
type Kind int

const (
	Unknown Kind = iota
	ValidationFailure
	Conflict
	NotFound
	UpstreamUnavailable
	StoreFailure
)

// String returns the kind's name, mainly for logs.
func (k Kind) String() string {
	switch k {
	case ValidationFailure:
		return "validation_failure"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case StoreFailure:
		return "store_failure"
	default:
		return "unknown"
	}
}

// Error is a classified application error. Msg is safe to show to API
// clients; Cause carries the underlying failure for logs and wrapping.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a classified error with a client-facing message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies an underlying error, keeping it available via Unwrap.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// KindOf recovers the kind from err or anything it wraps. Unclassified
// errors report Unknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

// Message returns the client-facing message for err. Unclassified
// errors get a generic message so internal detail never leaks.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Msg
	}
	return "An unexpected error occurred. Please try again."
}

// HTTPStatus maps each kind to its one externally observable status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case ValidationFailure:
		return fiber.StatusBadRequest
	case Conflict:
		return fiber.StatusConflict
	case NotFound:
		return fiber.StatusNotFound
	case UpstreamUnavailable:
		return fiber.StatusBadGateway
	case StoreFailure:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
