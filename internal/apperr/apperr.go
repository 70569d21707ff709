// Package apperr defines the closed set of error kinds the services return.
// Handlers map any *Error to its HTTP status; everything else is a 500.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a failure class
type Kind string

const (
	KindNotFound            Kind = "NOT_FOUND"
	KindNoAuthHeader        Kind = "NO_AUTHORIZATION_HEADER"
	KindInvalidAuthFormat   Kind = "INVALID_AUTH_FORMAT"
	KindInvalidToken        Kind = "INVALID_TOKEN"
	KindActionTokenRequired Kind = "ACTION_TOKEN_REQUIRED"
	KindEmailInUse          Kind = "EMAIL_ALREADY_IN_USE"
	KindInvalidCredentials  Kind = "INVALID_CREDENTIALS"
	KindValidation          Kind = "VALIDATION_ERROR"
	KindPasswordReuse       Kind = "PASSWORD_REUSE_FORBIDDEN"
	KindEmailVerified       Kind = "EMAIL_ALREADY_VERIFIED"
	KindUserNotVerified     Kind = "USER_NOT_VERIFIED"
	KindForbidden           Kind = "FORBIDDEN"
	KindConflict            Kind = "CONFLICT"
	KindInternal            Kind = "INTERNAL"
)

var statusCodes = map[Kind]int{
	KindNotFound:            http.StatusNotFound,
	KindNoAuthHeader:        http.StatusUnauthorized,
	KindInvalidAuthFormat:   http.StatusUnauthorized,
	KindInvalidToken:        http.StatusUnauthorized,
	KindActionTokenRequired: http.StatusBadRequest,
	KindEmailInUse:          http.StatusConflict,
	KindInvalidCredentials:  http.StatusUnauthorized,
	KindValidation:          http.StatusBadRequest,
	KindPasswordReuse:       http.StatusBadRequest,
	KindEmailVerified:       http.StatusConflict,
	KindUserNotVerified:     http.StatusForbidden,
	KindForbidden:           http.StatusForbidden,
	KindConflict:            http.StatusConflict,
	KindInternal:            http.StatusInternalServerError,
}

var defaultMessages = map[Kind]string{
	KindNotFound:            "Not found",
	KindNoAuthHeader:        "Authorization required",
	KindInvalidAuthFormat:   "Invalid Authorization format",
	KindInvalidToken:        "Invalid or expired token",
	KindActionTokenRequired: "Action token is required",
	KindEmailInUse:          "Email is already in use",
	KindInvalidCredentials:  "Invalid credentials",
	KindValidation:          "Validation failed",
	KindPasswordReuse:       "You cannot set the old password",
	KindEmailVerified:       "Email is already verified",
	KindUserNotVerified:     "User must be verified to perform this action",
	KindForbidden:           "Forbidden: insufficient rights",
	KindConflict:            "Conflict",
	KindInternal:            "Something went wrong",
}

// Error is a typed service failure carrying its HTTP status
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// StatusCode returns the HTTP status mapped to the error's kind
func (e *Error) StatusCode() int {
	if code, ok := statusCodes[e.Kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// New creates an error of the given kind with its default message
func New(kind Kind) *Error {
	return &Error{Kind: kind, Message: defaultMessages[kind]}
}

// Newf creates an error of the given kind with a custom message
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind with its default message and a cause.
// The cause is kept for logging; it is never rendered to the client.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Message: defaultMessages[kind], cause: cause}
}

// From extracts a typed error from err, or nil if err is not one
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Is reports whether err is a typed error of the given kind
func Is(err error, kind Kind) bool {
	e := From(err)
	return e != nil && e.Kind == kind
}
