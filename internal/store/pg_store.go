package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/productmng/product-service/internal/domain"
	perrors "github.com/productmng/product-service/internal/errors"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = "id, name, description, price, created_at, updated_at, version"

// Insert persists a new product. The database assigns the ID and the initial
// version, and sets both timestamps to the transaction time.
// Returns ErrDuplicateProduct if the name is already taken.
func (p *PgStore) Insert(ctx context.Context, draft domain.ProductDraft) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, description, price)
		VALUES ($1, $2, $3)
		RETURNING ` + productColumns

	product, err := p.scanRow(p.db.QueryRow(ctx, query, draft.Name, draft.Description, draft.Price))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, perrors.ErrDuplicateProduct
		}
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}
	return product, nil
}

// FindByID retrieves a product by its identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := p.scanRow(p.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, perrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves all products.
func (p *PgStore) FindAll(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Description, &product.Price,
			&product.CreatedAt, &product.UpdatedAt, &product.Version,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product rows: %w", err)
	}
	return products, nil
}

// Save performs the compare-and-swap write: the update only matches when the
// stored version still equals expectedVersion, and the same statement advances
// the version and refreshes updated_at. When no row matches, a follow-up read
// distinguishes a vanished product from a concurrent modification.
func (p *PgStore) Save(ctx context.Context, product domain.Product, expectedVersion int64) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, updated_at = now(), version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING ` + productColumns

	updated, err := p.scanRow(p.db.QueryRow(ctx, query,
		product.Name, product.Description, product.Price, product.ID, expectedVersion))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, perrors.ErrDuplicateProduct
		}
		if errors.Is(err, pgx.ErrNoRows) {
			// Zero rows means either the product is gone or the version moved on.
			if _, findErr := p.FindByID(ctx, product.ID); findErr != nil {
				return nil, findErr
			}
			return nil, perrors.ErrConcurrentModification
		}
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return updated, nil
}

// DeleteByID removes a product by its identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) DeleteByID(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return perrors.ErrProductNotFound
	}
	return nil
}

// scanRow reads one product row.
func (p *PgStore) scanRow(row pgx.Row) (*domain.Product, error) {
	var product domain.Product
	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.CreatedAt, &product.UpdatedAt, &product.Version,
	)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
