package store

import (
	"context"
	"sync"
	"time"

	"github.com/productmng/product-service/internal/domain"
	perrors "github.com/productmng/product-service/internal/errors"
)

// InMemory implements ProductStore using an in-memory map. It mirrors the
// PostgreSQL semantics: unique names, store-assigned IDs and timestamps, and
// the compare-and-swap version check on Save. Used by unit tests and as a
// stand-in store when no database is configured.
type InMemory struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
	byName   map[string]int64
	nextID   int64
}

// NewInMemoryStore creates a new empty in-memory product store.
func NewInMemoryStore() *InMemory {
	return &InMemory{
		products: make(map[int64]domain.Product),
		byName:   make(map[string]int64),
		nextID:   1,
	}
}

// Insert adds a new product, assigning the ID, the initial version and both
// timestamps. Returns ErrDuplicateProduct if the name is already taken.
func (s *InMemory) Insert(_ context.Context, draft domain.ProductDraft) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[draft.Name]; exists {
		return nil, perrors.ErrDuplicateProduct
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          s.nextID,
		Name:        draft.Name,
		Description: draft.Description,
		Price:       draft.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     0,
	}
	s.nextID++
	s.products[product.ID] = product
	s.byName[product.Name] = product.ID

	return &product, nil
}

// FindByID retrieves a product by its ID.
func (s *InMemory) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	return &product, nil
}

// FindAll retrieves all products.
func (s *InMemory) FindAll(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		list = append(list, product)
	}
	return list, nil
}

// Save applies the compare-and-swap write: the product is only updated when
// its stored version still equals expectedVersion. The whole check-and-write
// happens under one lock, giving the same atomicity as the SQL statement.
func (s *InMemory) Save(_ context.Context, product domain.Product, expectedVersion int64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[product.ID]
	if !ok {
		return nil, perrors.ErrProductNotFound
	}
	if current.Version != expectedVersion {
		return nil, perrors.ErrConcurrentModification
	}
	if id, exists := s.byName[product.Name]; exists && id != product.ID {
		return nil, perrors.ErrDuplicateProduct
	}

	updated := current
	updated.Name = product.Name
	updated.Description = product.Description
	updated.Price = product.Price
	updated.UpdatedAt = time.Now().UTC()
	updated.Version = current.Version + 1

	delete(s.byName, current.Name)
	s.byName[updated.Name] = updated.ID
	s.products[updated.ID] = updated

	return &updated, nil
}

// DeleteByID deletes a product by its ID.
func (s *InMemory) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[id]
	if !exists {
		return perrors.ErrProductNotFound
	}
	delete(s.products, id)
	delete(s.byName, product.Name)
	return nil
}
