// Package service provides the implementation of product lifecycle business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/productmng/product-service/internal/domain"
	perrors "github.com/productmng/product-service/internal/errors"
	"github.com/productmng/product-service/internal/store"
	"github.com/shopspring/decimal"
)

// ProductService defines the operations for managing products.
// It abstracts the underlying business logic and data access.
type ProductService interface {
	// Create adds a new product to the catalog.
	// Returns ErrDuplicateProduct if a product with the same name exists.
	Create(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error)

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*domain.Product, error)

	// FindAll returns a snapshot of all products. No consistency guarantee
	// holds across calls beyond what the store provides per call.
	FindAll(ctx context.Context) ([]domain.Product, error)

	// ChangePrice updates the price of a product using an optimistic
	// read-then-write: the version read is submitted as the expected version
	// of the write. Returns ErrProductNotFound or ErrConcurrentModification;
	// conflicts are never retried here, the caller decides.
	ChangePrice(ctx context.Context, id int64, newPrice decimal.Decimal) (*domain.Product, error)

	// Delete removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id int64) error
}

// Service implements ProductService on top of a ProductStore. It is stateless
// and holds no in-process locks: the store's compare-and-swap write is the
// only ordering point between concurrent callers.
type Service struct {
	repository store.ProductStore
	logger     *slog.Logger
}

// NewService creates a new instance of ProductService with the provided store.
func NewService(repo store.ProductStore, logger *slog.Logger) *Service {
	return &Service{
		repository: repo,
		logger:     logger.With("component", "service"),
	}
}

// Create persists a new product. The draft is assumed to have passed
// field-level validation at the boundary.
func (s *Service) Create(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error) {
	product, err := s.repository.Insert(ctx, draft)
	if err != nil {
		if errors.Is(err, perrors.ErrDuplicateProduct) {
			s.logger.WarnContext(ctx, "Create product rejected, duplicate name", "name", draft.Name)
			return nil, perrors.ErrDuplicateProduct
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.InfoContext(ctx, "Product created", "id", product.ID, "name", product.Name, "price", product.Price)
	return product, nil
}

// FindByID retrieves a product by its ID.
func (s *Service) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repository.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to fetch product by ID %d: %w", id, err)
	}
	return product, nil
}

// FindAll retrieves all products.
func (s *Service) FindAll(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// ChangePrice updates the price of a product. The price positivity is
// re-checked here even though the boundary validates it, so no store write is
// ever attempted with a non-positive price. The window between the read and
// the write is not locked; it is closed by the store's version check.
func (s *Service) ChangePrice(ctx context.Context, id int64, newPrice decimal.Decimal) (*domain.Product, error) {
	if !newPrice.IsPositive() {
		return nil, perrors.NewValidationError("Price value must be greater than 0")
	}

	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	oldPrice := current.Price
	current.Price = newPrice

	updated, err := s.repository.Save(ctx, *current, current.Version)
	if err != nil {
		switch {
		case errors.Is(err, perrors.ErrProductNotFound):
			return nil, notFound(id)
		case errors.Is(err, perrors.ErrConcurrentModification):
			s.logger.WarnContext(ctx, "Price change lost the version race", "id", id, "version", current.Version)
			return nil, perrors.ErrConcurrentModification
		case errors.Is(err, perrors.ErrDuplicateProduct):
			return nil, perrors.ErrDuplicateProduct
		}
		return nil, fmt.Errorf("failed to change price for product %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Product price changed", "id", updated.ID, "oldPrice", oldPrice, "newPrice", updated.Price)
	return updated, nil
}

// Delete removes a product after checking it exists. The delete itself is not
// version-guarded: a concurrent price change can be overtaken by a delete
// without a conflict being reported.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.FindByID(ctx, id); err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			s.logger.WarnContext(ctx, "Delete product refused, not found", "id", id)
		}
		return err
	}

	if err := s.repository.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, perrors.ErrProductNotFound) {
			return notFound(id)
		}
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Product deleted", "id", id)
	return nil
}

// notFound attaches the offending ID to the not-found sentinel so the
// boundary can surface it without re-deriving the message.
func notFound(id int64) error {
	return fmt.Errorf("%w with id: %d", perrors.ErrProductNotFound, id)
}
