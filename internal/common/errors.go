// Package common defines the error taxonomy shared by all server layers,
// plus small helpers for random values. Callers match errors with errors.Is
// against the Err* sentinels or inspect the kind via KindOf.
package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one entry of the error taxonomy. Every error crossing the
// service boundary carries exactly one Kind.
type Kind string

const (
	KindAuthenticationFailed Kind = "authentication_failed"
	KindUserNotFound         Kind = "user_not_found"
	KindValidationFailed     Kind = "validation_failed"
	KindWeakSecret           Kind = "weak_secret"
	KindControlExpired       Kind = "control_expired"
	KindControlNotFound      Kind = "control_not_found"
	KindTokenExpired         Kind = "token_expired"
	KindTokenInvalid         Kind = "token_invalid"
	KindRevokedToken         Kind = "revoked_token"
	KindInternal             Kind = "internal"
)

// ErrorNotFound is the repository-level sentinel for an absent row.
// Services translate it into a taxonomy error before it leaves the core.
var ErrorNotFound = errors.New("not found")

// FieldError describes one failed validation check, surfaced verbatim so the
// client can correct its input.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the typed error returned by services. Message is safe to show to
// clients except for KindInternal, where only a generic description may be
// echoed.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches by Kind, so errors.Is(err, common.ErrWeakSecret) works for any
// instance of that kind regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is matching. Do not return these directly; use the
// constructors below so each instance carries its own message.
var (
	ErrAuthenticationFailed = &Error{Kind: KindAuthenticationFailed}
	ErrUserNotFound         = &Error{Kind: KindUserNotFound}
	ErrValidationFailed     = &Error{Kind: KindValidationFailed}
	ErrWeakSecret           = &Error{Kind: KindWeakSecret}
	ErrControlExpired       = &Error{Kind: KindControlExpired}
	ErrControlNotFound      = &Error{Kind: KindControlNotFound}
	ErrTokenExpired         = &Error{Kind: KindTokenExpired}
	ErrTokenInvalid         = &Error{Kind: KindTokenInvalid}
	ErrRevokedToken         = &Error{Kind: KindRevokedToken}
	ErrInternal             = &Error{Kind: KindInternal}
)

// AuthenticationFailed returns the generic login failure. The message is
// identical for every failed check so callers cannot tell a missing user
// from a wrong password.
func AuthenticationFailed() *Error {
	return &Error{Kind: KindAuthenticationFailed, Message: "Incorrect authentication"}
}

// UserNotFound reports a missing user by identifier.
func UserNotFound(id string) *Error {
	return &Error{Kind: KindUserNotFound, Message: "User not found: " + id}
}

// Validation reports client-correctable input problems.
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidationFailed, Message: message, Fields: fields}
}

// WeakSecret reports a password that does not meet the strength policy.
func WeakSecret() *Error {
	return &Error{Kind: KindWeakSecret, Message: "Password must have at least 10 characters."}
}

// ControlNotFound reports an unknown control secret during reset.
func ControlNotFound() *Error {
	return &Error{Kind: KindControlNotFound, Message: "Control password not found."}
}

// ControlExpired reports a control secret whose validity window has passed.
func ControlExpired() *Error {
	return &Error{Kind: KindControlExpired, Message: "Control password expired."}
}

// TokenExpired reports a token that was valid once but is now stale.
func TokenExpired(cause error) *Error {
	return &Error{Kind: KindTokenExpired, Message: "Token expired.", cause: cause}
}

// TokenInvalid reports a token that never verified: bad signature, malformed
// payload, or missing value.
func TokenInvalid(cause error) *Error {
	return &Error{Kind: KindTokenInvalid, Message: "Invalid token.", cause: cause}
}

// RevokedToken reports a token present in the revocation ledger.
func RevokedToken() *Error {
	return &Error{Kind: KindRevokedToken, Message: "Token not valid. User already did logout."}
}

// Internal wraps an unexpected store or collaborator failure. The message and
// cause are for logs; clients only ever see a generic description.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf extracts the taxonomy kind from err, or KindInternal when err is not
// a taxonomy error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// HTTPStatus maps a taxonomy kind to its default HTTP status. UserNotFound
// from an internal-inconsistency call site must be wrapped with Internal by
// the caller instead of relying on this mapping.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthenticationFailed, KindTokenExpired:
		return http.StatusUnauthorized
	case KindUserNotFound:
		return http.StatusNotFound
	case KindValidationFailed, KindWeakSecret, KindControlExpired, KindControlNotFound:
		return http.StatusBadRequest
	case KindTokenInvalid, KindRevokedToken:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
