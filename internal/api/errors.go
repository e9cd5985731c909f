package api

import (
	"fmt"
	"net/http"
)

// Kind classifies a failed API operation so callers can branch on it without
// string matching.
type Kind int

const (
	KindUnexpected Kind = iota
	KindNetwork
	KindSessionExpired
	KindInvalidCredentials
	KindValidationFailed
	KindOtpInvalidOrExpired
	KindPasswordMismatch
)

// String returns the kind's wire-stable name.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network_error"
	case KindSessionExpired:
		return "session_expired"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindValidationFailed:
		return "validation_failed"
	case KindOtpInvalidOrExpired:
		return "otp_invalid_or_expired"
	case KindPasswordMismatch:
		return "password_mismatch"
	default:
		return "unexpected"
	}
}

// Error is the typed failure every API operation returns. Network-layer
// errors are translated into this shape once, at the transport boundary.
type Error struct {
	Kind        Kind
	Status      int
	Detail      string
	FieldErrors map[string][]string
	cause       error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by kind, so errors.Is(err, &Error{Kind: ...}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// ErrSessionExpired is the shared failure every caller queued behind a failed
// refresh receives.
var ErrSessionExpired = &Error{
	Kind:   KindSessionExpired,
	Detail: "session expired, please log in again",
}

// errorBody is the error payload shape shared by every endpoint.
type errorBody struct {
	Detail string              `json:"detail"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func networkError(err error) *Error {
	return &Error{
		Kind:   KindNetwork,
		Detail: "request failed, check your connection and try again",
		cause:  err,
	}
}

func statusError(status int, body errorBody) *Error {
	e := &Error{
		Status:      status,
		Detail:      body.Detail,
		FieldErrors: body.Errors,
	}
	switch {
	case status == http.StatusUnprocessableEntity || len(body.Errors) > 0:
		e.Kind = KindValidationFailed
	default:
		e.Kind = KindUnexpected
	}
	if e.Detail == "" {
		e.Detail = http.StatusText(status)
	}
	return e
}

// AsError returns err as *Error, wrapping foreign errors as unexpected.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*Error); ok {
		return apiErr
	}
	return &Error{Kind: KindUnexpected, Detail: err.Error(), cause: err}
}
