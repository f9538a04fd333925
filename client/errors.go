package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/softTechSolutions2001/eduplatform-sub000/auth"
)

// ErrorKind classifies a normalized API failure.
type ErrorKind string

const (
	// KindNetwork covers transport failures: connection refused, DNS
	// errors, resets, and timeouts.
	KindNetwork ErrorKind = "network"
	// KindHTTP covers responses the server produced with a non-2xx status.
	KindHTTP ErrorKind = "http"
	// KindCancelled marks calls abandoned by the caller's context.
	KindCancelled ErrorKind = "cancelled"
	// KindRefreshExhausted marks calls that failed because the token
	// refresh cycle gave up. The caller must log in again.
	KindRefreshExhausted ErrorKind = "auth_refresh_exhausted"
)

// APIError is the single error shape every Client operation returns.
// Callers branch on Kind and the status helpers instead of matching
// transport-specific error strings.
type APIError struct {
	Kind        ErrorKind
	Message     string
	HTTPStatus  int
	Details     map[string]any
	IsNetwork   bool
	IsCancelled bool

	cause error
}

func (e *APIError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.HTTPStatus)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// IsAuthError reports whether the server rejected the credential (401).
func (e *APIError) IsAuthError() bool {
	return e.HTTPStatus == http.StatusUnauthorized || e.Kind == KindRefreshExhausted
}

// IsPermissionError reports whether the caller lacks rights to the resource (403).
func (e *APIError) IsPermissionError() bool {
	return e.HTTPStatus == http.StatusForbidden
}

// IsNotFoundError reports whether the resource does not exist (404).
func (e *APIError) IsNotFoundError() bool {
	return e.HTTPStatus == http.StatusNotFound
}

// IsValidationError reports whether the request payload was rejected (400).
func (e *APIError) IsValidationError() bool {
	return e.HTTPStatus == http.StatusBadRequest
}

// IsServerError reports whether the server itself failed (5xx).
func (e *APIError) IsServerError() bool {
	return e.HTTPStatus >= 500
}

// Normalize maps any error produced inside the request pipeline to an
// *APIError. It is idempotent: an *APIError passes through unchanged, so
// layered calls never double-wrap. Cancellation is checked before
// everything else so an abandoned call never masquerades as a network
// failure.
func Normalize(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, context.Canceled) {
		return &APIError{
			Kind:        KindCancelled,
			Message:     "request cancelled",
			IsCancelled: true,
			cause:       err,
		}
	}
	if errors.Is(err, auth.ErrRefreshExhausted) {
		return &APIError{
			Kind:    KindRefreshExhausted,
			Message: err.Error(),
			cause:   err,
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{
			Kind:      KindNetwork,
			Message:   "request timed out",
			IsNetwork: true,
			cause:     err,
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{
			Kind:      KindNetwork,
			Message:   "request timed out",
			IsNetwork: true,
			cause:     err,
		}
	}
	return &APIError{
		Kind:      KindNetwork,
		Message:   fmt.Sprintf("network error: %v", err),
		IsNetwork: true,
		cause:     err,
	}
}

// newHTTPError builds the normalized form of a non-2xx response. The body
// is parsed as JSON when possible; a "detail" field replaces the generic
// status text as the message, matching the platform's error envelope.
func newHTTPError(status int, body []byte) *APIError {
	msg := http.StatusText(status)
	var details map[string]any
	if len(body) > 0 {
		parsed := map[string]any{}
		if err := unmarshalLoose(body, &parsed); err == nil {
			details = parsed
			if d, ok := parsed["detail"].(string); ok && d != "" {
				msg = d
			}
		}
	}
	return &APIError{
		Kind:       KindHTTP,
		Message:    msg,
		HTTPStatus: status,
		Details:    details,
	}
}
