package carts

import (
	"context"
	"errors"
	"time"

	"bazar/internal/identity"
)

var (
	ErrNotFound           = errors.New("cart not found")
	ErrItemNotFound       = errors.New("cart item not found")
	ErrProductUnavailable = errors.New("product is inactive or does not exist")
	ErrInvalidQuantity    = errors.New("quantity must not be negative")
)

// Cart is owned by exactly one user or one guest session. Guest carts
// expire; user carts do not.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    *int64     `json:"user_id,omitempty"`
	SessionID *string    `json:"session_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID         int64     `json:"id"`
	CartID     int64     `json:"cart_id"`
	ProductID  int64     `json:"product_id"`
	Quantity   int       `json:"quantity"`
	PriceCents int64     `json:"price_cents"` // snapshot captured at add time
	AddedAt    time.Time `json:"added_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Key identifies a line within its collection: one row per product.
func (i CartItem) Key() int64 { return i.ProductID }

// CartLine is a cart item joined with the live product row.
type CartLine struct {
	ItemID            int64     `json:"item_id"`
	ProductID         int64     `json:"product_id"`
	ProductName       string    `json:"product_name"`
	Quantity          int       `json:"quantity"`
	PriceCents        int64     `json:"price_cents"`
	CurrentPriceCents int64     `json:"current_price_cents"`
	LineTotalCents    int64     `json:"line_total_cents"`
	IsActive          bool      `json:"is_active"`
	InStock           bool      `json:"in_stock"`
	InventoryQty      int       `json:"inventory_qty"`
	AddedAt           time.Time `json:"added_at"`
}

type CartView struct {
	Cart          Cart       `json:"cart"`
	Items         []CartLine `json:"items"`
	SubtotalCents int64      `json:"subtotal_cents"`
}

type Store interface {
	GetOrCreate(ctx context.Context, owner identity.Owner) (*Cart, error)
	Find(ctx context.Context, owner identity.Owner) (*Cart, error)

	AddItem(ctx context.Context, owner identity.Owner, productID int64, qty int) error
	UpdateQuantity(ctx context.Context, owner identity.Owner, productID int64, qty int) error
	RemoveItem(ctx context.Context, owner identity.Owner, productID int64) error
	Clear(ctx context.Context, owner identity.Owner) error

	View(ctx context.Context, owner identity.Owner) (*CartView, error)
	ViewByID(ctx context.Context, cartID int64) (*CartView, error)
	Items(ctx context.Context, cartID int64) ([]CartItem, error)

	// Internal: payment reconciliation and housekeeping.
	ClearByID(ctx context.Context, cartID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}
