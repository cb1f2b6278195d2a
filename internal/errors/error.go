// Package errors provides the domain error taxonomy for product operations.
// Raw storage errors never cross the service boundary: the store and service
// translate them into these kinds, and the transport layer maps each kind to
// a stable HTTP response.
package errors

import (
	"errors"
	"strings"
)

var ErrProductNotFound = errors.New("product not found")
var ErrDuplicateProduct = errors.New("product with this name already exists")
var ErrConcurrentModification = errors.New("product was modified concurrently")
var ErrConstraintViolation = errors.New("database constraint violation")

// ValidationError aggregates every violated field constraint of a request
// into a single error, rather than failing on the first violation.
type ValidationError struct {
	Violations []string
}

func NewValidationError(violations ...string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// Error joins all violations with a comma, matching the wire-level message
// format consumed by clients.
func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, ", ")
}
