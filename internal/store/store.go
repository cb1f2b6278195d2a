// Package store provides the persistence contract for products.
package store

import (
	"context"

	"github.com/productmng/product-service/internal/domain"
)

// ProductStore is the persistence abstraction for products. It guarantees
// unique-key enforcement on the product name and atomic compare-and-swap
// semantics on the version counter. Implementations assign IDs, timestamps
// and versions; callers never do.
type ProductStore interface {
	// Insert persists a new product and returns it with the store-assigned
	// ID, version and timestamps. Returns ErrDuplicateProduct if a product
	// with the same name already exists; the insert is atomic, so a conflict
	// leaves no partial state behind.
	Insert(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error)

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id int64) (*domain.Product, error)

	// FindAll returns all products. No ordering is guaranteed.
	FindAll(ctx context.Context) ([]domain.Product, error)

	// Save writes the product's mutable fields only if the stored version
	// still equals expectedVersion, incrementing the version and refreshing
	// the update timestamp in the same atomic write. Returns
	// ErrConcurrentModification if the version moved on, ErrProductNotFound
	// if the product no longer exists, and ErrDuplicateProduct if the write
	// would violate name uniqueness. A failed save mutates nothing.
	Save(ctx context.Context, product domain.Product, expectedVersion int64) (*domain.Product, error)

	// DeleteByID removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id int64) error
}
