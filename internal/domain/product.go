// Package domain contains the core product entity and its invariants.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the sole entity of the catalog. All server-assigned fields
// (ID, Version, CreatedAt, UpdatedAt) are owned by the store: the entity
// never sets its own timestamps or advances its own version.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Version is the optimistic-concurrency token. It starts at 0 on insert
	// and is incremented by the store on every successful write.
	Version int64
}

// ProductDraft carries the caller-supplied fields of a product to be created.
// Field-level validation (name length, price positivity) happens at the
// boundary before a draft reaches the service.
type ProductDraft struct {
	Name        string
	Description string
	Price       decimal.Decimal
}
