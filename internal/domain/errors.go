package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidCredential covers every rejected OTP or token. Callers only
	// ever see this generic kind; the concrete sub-case goes to logs and audit.
	ErrInvalidCredential = errors.New("invalid credential")
	ErrRateLimited       = errors.New("rate limited")
	ErrDependency        = errors.New("dependency unavailable")
	ErrDeliveryFailed    = fmt.Errorf("delivery failed: %w", ErrDependency)
)

// Credential errors returned by the public auth flows.
var (
	ErrInvalidOTP   = fmt.Errorf("invalid or expired OTP: %w", ErrInvalidCredential)
	ErrInvalidToken = fmt.Errorf("invalid token: %w", ErrInvalidCredential)
)

// ValidationError reports malformed or missing input, field by field.
// Fields is keyed by the JSON field name.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func NewValidationError(msg string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

// FieldError is shorthand for a validation error on a single field.
func FieldError(field, msg string) *ValidationError {
	return &ValidationError{Message: msg, Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrBadRequest }
