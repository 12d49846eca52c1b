package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrSourceUnavailable indicates the observation source could not be reached.
	ErrSourceUnavailable = errors.New("observation source unavailable")
)

// ValidationError describes a rejected filter, pagination parameter or payload field.
// It always matches ErrInvalidInput via errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidInput).
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// TransportError is the normalised form of any failed call to the
// observation source: network failure, timeout or non-2xx response.
// Status is 0 when no response was received.
type TransportError struct {
	Status int
	Detail string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return "transport error: " + e.Detail
	}
	return fmt.Sprintf("transport error (status %d): %s", e.Status, e.Detail)
}

// Unwrap exposes the cause. 404 maps to ErrNotFound and 400/422 to
// ErrInvalidInput so callers can tell local failures from outages.
func (e *TransportError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Status {
	case 404:
		return ErrNotFound
	case 400, 422:
		return ErrInvalidInput
	default:
		return ErrSourceUnavailable
	}
}

// PartialAggregationError reports the sections of a joint fetch that
// failed while the others succeeded. Causes holds the errors of sections
// that had no data at all.
type PartialAggregationError struct {
	Sections []string
	Causes   []error
}

func (e *PartialAggregationError) Error() string {
	return "partial aggregation: failed sections: " + strings.Join(e.Sections, ", ")
}

func (e *PartialAggregationError) Unwrap() []error {
	return e.Causes
}

// IsLocalError reports whether err must be surfaced to the caller rather than
// answered with fallback data.
func IsLocalError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrNotFound)
}
