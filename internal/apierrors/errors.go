// Package apierrors defines the normalized failure taxonomy shared by the
// HTTP client (producer) and the session manager and UI surfaces (consumers).
// A failed remote call is classified exactly once, at the client boundary;
// nothing downstream re-classifies.
package apierrors

import (
	"errors"
	"fmt"
)

// Kind defines the normalized failure taxonomy.
type Kind string

const (
	// KindUnauthorized indicates the credential is missing, invalid, or expired.
	KindUnauthorized Kind = "unauthorized"

	// KindForbidden indicates the caller is authenticated but not permitted.
	KindForbidden Kind = "forbidden"

	// KindNotFound indicates the requested resource doesn't exist.
	KindNotFound Kind = "not_found"

	// KindServerError indicates the remote service failed (5xx).
	KindServerError Kind = "server_error"

	// KindValidation indicates the server rejected the request with a
	// human-readable detail message.
	KindValidation Kind = "validation"

	// KindNetwork indicates no response was received at all.
	KindNetwork Kind = "network"

	// KindUnknown indicates an unexpected or unclassifiable failure.
	KindUnknown Kind = "unknown"
)

// Fixed user-facing messages for the non-validation kinds. These surface
// verbatim in the CLI, so keep them sentence-cased.
const (
	MsgSessionExpired = "Your session has expired. Please log in again."
	MsgLoginRequired  = "Please log in to access this resource."
	MsgForbidden      = "You don't have permission to perform this action."
	MsgNotFound       = "The requested resource was not found."
	MsgServerError    = "Server error. Please try again later."
	MsgNetworkError   = "Could not reach the server. Please check your connection and try again."
	MsgUnknown        = "An unexpected error occurred. Please try again."
)

// Error wraps a remote call failure with its normalized kind.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap supports error unwrapping.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// New creates a normalized error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a normalized error around an underlying cause.
func Wrap(kind Kind, message string, underlying error) *Error {
	return &Error{Kind: kind, Message: message, Underlying: underlying}
}

// KindOf extracts the kind from an error. Errors that did not pass through
// the client boundary report KindUnknown.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

// MessageOf extracts the user-facing message from an error, falling back to
// the generic text for foreign errors.
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return MsgUnknown
}

// IsRetryable reports whether the failure is transient and worth retrying by
// the caller. Retrying never happens inside the core.
func IsRetryable(err error) bool {
	k := KindOf(err)
	return k == KindNetwork || k == KindServerError
}

// IsUnauthorized reports whether the failure means the session (or lack of
// one) was rejected by the remote service.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}
