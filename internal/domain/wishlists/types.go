package wishlists

import (
	"context"
	"errors"
	"time"

	"bazar/internal/identity"
)

var (
	ErrNotFound           = errors.New("wishlist not found")
	ErrItemNotFound       = errors.New("wishlist item not found")
	ErrProductUnavailable = errors.New("product is inactive or does not exist")
	ErrBadShareToken      = errors.New("share token is not valid")
)

// Wishlist mirrors the cart's ownership model: one owner, guest rows
// expire, user rows do not.
type Wishlist struct {
	ID        int64      `json:"id"`
	UserID    *int64     `json:"user_id,omitempty"`
	SessionID *string    `json:"session_id,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// WishlistItem carries free-form notes instead of a quantity; re-adding
// a product replaces the notes.
type WishlistItem struct {
	ID         int64     `json:"id"`
	WishlistID int64     `json:"wishlist_id"`
	ProductID  int64     `json:"product_id"`
	Notes      *string   `json:"notes,omitempty"`
	AddedAt    time.Time `json:"added_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (i WishlistItem) Key() int64 { return i.ProductID }

type WishlistLine struct {
	ItemID            int64     `json:"item_id"`
	ProductID         int64     `json:"product_id"`
	ProductName       string    `json:"product_name"`
	Notes             *string   `json:"notes,omitempty"`
	CurrentPriceCents int64     `json:"current_price_cents"`
	IsActive          bool      `json:"is_active"`
	InStock           bool      `json:"in_stock"`
	AddedAt           time.Time `json:"added_at"`
}

type WishlistView struct {
	Wishlist Wishlist       `json:"wishlist"`
	Items    []WishlistLine `json:"items"`
}

type Store interface {
	GetOrCreate(ctx context.Context, owner identity.Owner) (*Wishlist, error)
	Find(ctx context.Context, owner identity.Owner) (*Wishlist, error)

	AddItem(ctx context.Context, owner identity.Owner, productID int64, notes *string) error
	UpdateNotes(ctx context.Context, owner identity.Owner, productID int64, notes *string) error
	RemoveItem(ctx context.Context, owner identity.Owner, productID int64) error
	Clear(ctx context.Context, owner identity.Owner) error

	View(ctx context.Context, owner identity.Owner) (*WishlistView, error)
	ViewByID(ctx context.Context, wishlistID int64) (*WishlistView, error)

	DeleteExpired(ctx context.Context) (int64, error)
}
