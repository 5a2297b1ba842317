package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing catalog item.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest signals a malformed request parameter.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrRateLimited signals a request quota hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstreamUnavailable signals a catalog store timeout or failure.
	// Distinct from an empty result so callers can tell "no results" from "engine down".
	ErrUpstreamUnavailable = errors.New("catalog store unavailable")
)

// FieldError wraps ErrInvalidRequest with the offending field name.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q %s", ErrInvalidRequest.Error(), e.Field, e.Msg)
}

func (e *FieldError) Unwrap() error { return ErrInvalidRequest }

// NewFieldError creates a field-level validation error.
func NewFieldError(field, msg string) error {
	return &FieldError{Field: field, Msg: msg}
}
