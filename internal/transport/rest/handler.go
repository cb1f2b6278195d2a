// Package rest provides the HTTP boundary for product operations: request
// decoding and validation, role-gated routing, and error translation.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/productmng/product-service/internal/domain"
	perrors "github.com/productmng/product-service/internal/errors"
	"github.com/productmng/product-service/internal/service"
	"github.com/productmng/product-service/pkg/web"
	"github.com/shopspring/decimal"
)

// ProductRequest is the payload for creating a product. The price travels as
// a JSON number or string and is parsed into a fixed-precision decimal.
type ProductRequest struct {
	Name        string          `json:"name"        validate:"max=255"`
	Description string          `json:"description" validate:"max=1000"`
	Price       decimal.Decimal `json:"price"       validate:"-"`
}

// ChangePriceRequest is the payload for updating a product's price.
type ChangePriceRequest struct {
	NewPrice decimal.Decimal `json:"newPrice"`
}

// ProductResponse is the product representation returned to clients.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Version     int64           `json:"version"`
}

type Handler struct {
	service  service.ProductService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new product HTTP handler with the provided service.
func NewHandler(service service.ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// Guards carries the route-level authorization middleware. Write operations
// are admin-only; reads accept any authenticated role.
type Guards struct {
	AdminOnly func(http.Handler) http.Handler
	AnyRole   func(http.Handler) http.Handler
}

// PassthroughGuards disables role gating, for local runs and tests.
func PassthroughGuards() Guards {
	identity := func(next http.Handler) http.Handler { return next }
	return Guards{AdminOnly: identity, AnyRole: identity}
}

// RegisterRoutes registers the HTTP routes for the product service.
func (h *Handler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.With(guards.AnyRole).Get("/", h.FindAll)
		r.With(guards.AdminOnly).Post("/", h.Create)

		r.Route("/{id}", func(r chi.Router) {
			r.With(guards.AnyRole).Get("/", h.FindByID)
			r.With(guards.AdminOnly).Delete("/", h.DeleteByID)
			r.With(guards.AdminOnly).Patch("/price", h.ChangePrice)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// FindByID retrieves a product by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toResponse(found))
}

// FindAll retrieves a list of all products.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to find all products")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	responses := make([]ProductResponse, len(list))
	for i := range list {
		responses[i] = *toResponse(&list[i])
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(responses))
	web.RespondJSON(w, mLogger, http.StatusOK, responses)
}

// Create handles the creation of a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var request ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, r, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validateProductRequest(request); err != nil {
		mLogger.WarnContext(r.Context(), "Validation failed", "error", err)
		h.respondError(w, r, mLogger, err)
		return
	}

	created, err := h.service.Create(r.Context(), domain.ProductDraft{
		Name:        request.Name,
		Description: request.Description,
		Price:       request.Price,
	})
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created successfully", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, toResponse(created))
}

// ChangePrice handles the price update of a product.
func (h *Handler) ChangePrice(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	var request ChangePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, r, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !request.NewPrice.IsPositive() {
		h.respondError(w, r, mLogger, perrors.NewValidationError("Price value must be greater than 0"))
		return
	}

	updated, err := h.service.ChangePrice(r.Context(), id, request.NewPrice)
	if err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product price updated", "ID", updated.ID, "Price", updated.Price)
	web.RespondJSON(w, mLogger, http.StatusOK, toResponse(updated))
}

// DeleteByID deletes a product by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusNoContent, nil)
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// validateProductRequest collects every violated field constraint into a
// single ValidationError rather than failing on the first.
func (h *Handler) validateProductRequest(request ProductRequest) error {
	var violations []string

	if strings.TrimSpace(request.Name) == "" {
		violations = append(violations, "Product name must not be blank")
	}
	if err := h.validate.Struct(request); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				violations = append(violations, violationMessage(fieldErr))
			}
		} else {
			violations = append(violations, "Invalid request body")
		}
	}
	if !request.Price.IsPositive() {
		violations = append(violations, "Price value must be greater than 0")
	}

	if len(violations) > 0 {
		return perrors.NewValidationError(violations...)
	}
	return nil
}

// violationMessage renders a field error in the message format clients rely on.
func violationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Field() {
	case "Name":
		return "Maximum number of characters for product name is 255"
	case "Description":
		return "Description must not exceed 1000 characters"
	}
	return fmt.Sprintf("%s failed on rule: %s", fieldErr.Field(), fieldErr.Tag())
}

// respondError translates a domain error into the boundary envelope.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error) {
	status, response := toErrorResponse(err, r.URL.Path)
	if status == http.StatusInternalServerError {
		mLogger.ErrorContext(r.Context(), "Unexpected error", "error", err)
	} else {
		mLogger.WarnContext(r.Context(), "Request failed", "status", status, "error", err)
	}
	web.RespondJSON(w, mLogger, status, response)
}

// toResponse converts a domain.Product to its wire representation.
func toResponse(product *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
		Version:     product.Version,
	}
}

// loggerWithReqID returns the handler logger bound to the request id.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	if reqID, ok := web.GetRequestID(r.Context()); ok {
		return h.logger.With("request_id", reqID)
	}
	return h.logger
}
