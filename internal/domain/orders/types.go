package orders

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrEmptyCart = errors.New("cart has no items")
)

// Order is a frozen snapshot taken at checkout. Item prices come from
// the cart's add-time snapshots, never from the live catalog, so the
// amount sent to the payment provider cannot drift afterwards.
type Order struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	CartID        int64      `json:"cart_id"`
	OrderNumber   string     `json:"order_number"`
	CheckoutID    string     `json:"checkout_id"`
	Status        string     `json:"status"` // pending, paid, cancelled
	SubtotalCents int64      `json:"subtotal_cents"`
	TotalCents    int64      `json:"total_cents"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type OrderItem struct {
	ID                   int64  `json:"id"`
	OrderID              int64  `json:"order_id"`
	ProductID            int64  `json:"product_id"`
	ProductName          string `json:"product_name"`
	Quantity             int    `json:"quantity"`
	PriceAtPurchaseCents int64  `json:"price_at_purchase_cents"`
}

type OrderDetail struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

type Store interface {
	CreateFromCart(ctx context.Context, userID, cartID int64) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetDetailForUser(ctx context.Context, userID, orderID int64) (*OrderDetail, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error)
	Items(ctx context.Context, orderID int64) ([]OrderItem, error)

	MarkPaid(ctx context.Context, orderID int64) error

	// ClaimPaymentEvent records that a payment-confirmed event for the
	// order has been handled. It returns false when the order id was
	// already claimed, which is how replayed webhook deliveries are
	// kept from decrementing inventory twice.
	ClaimPaymentEvent(ctx context.Context, orderID int64, checkoutID string) (bool, error)
}
