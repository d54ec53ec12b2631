package products

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("product not found")

// Product is the catalog entity. The storefront core reads it for cart
// views and checkout validation; the only write path is the inventory
// decrement applied after a confirmed payment.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	IsActive     bool      `json:"is_active"`
	InStock      bool      `json:"in_stock"`
	InventoryQty int       `json:"inventory_qty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Store interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetMany(ctx context.Context, ids []int64) (map[int64]Product, error)
	List(ctx context.Context, onlyActive bool, limit, offset int) ([]Product, int, error)

	// DecrementInventory reduces stock by qty, flooring at zero, and
	// recomputes the in_stock flag.
	DecrementInventory(ctx context.Context, id int64, qty int) error
}
