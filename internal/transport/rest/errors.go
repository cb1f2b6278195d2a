package rest

import (
	"errors"
	"net/http"

	perrors "github.com/productmng/product-service/internal/errors"
	"github.com/productmng/product-service/pkg/web"
)

// toErrorResponse is the centralized translation from a domain error to the
// boundary envelope. It is a pure mapping, independent of any transport
// machinery, so the policy is testable on its own. Unrecognized errors
// collapse to a generic 500 and leak no internal detail.
func toErrorResponse(err error, path string) (int, web.ErrorResponse) {
	var validationErr *perrors.ValidationError

	var status int
	var message string
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = validationErr.Error()
	case errors.Is(err, perrors.ErrProductNotFound):
		status = http.StatusNotFound
		// The service wraps the sentinel with the offending id.
		message = err.Error()
	case errors.Is(err, perrors.ErrDuplicateProduct):
		status = http.StatusConflict
		message = "Product with this name already exists"
	case errors.Is(err, perrors.ErrConcurrentModification):
		status = http.StatusConflict
		message = "Product was modified concurrently. Please retry."
	case errors.Is(err, perrors.ErrConstraintViolation):
		status = http.StatusConflict
		message = "Database constraint violation"
	default:
		status = http.StatusInternalServerError
		message = "An unexpected error occurred"
	}
	return status, web.NewErrorResponse(status, message, path)
}
