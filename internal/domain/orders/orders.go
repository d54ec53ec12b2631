package orders

import (
	"context"
	"errors"
	"fmt"

	"bazar/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Repository struct {
	q   db.Querier
	gen *OrderNumberGenerator
}

func NewRepository(q db.Querier, gen *OrderNumberGenerator) *Repository {
	if gen == nil {
		panic("orders: OrderNumberGenerator is nil")
	}
	return &Repository{q: q, gen: gen}
}

const orderColumns = `id, user_id, cart_id, order_number, checkout_id, status, subtotal_cents, total_cents, paid_at, created_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.CartID,
		&o.OrderNumber,
		&o.CheckoutID,
		&o.Status,
		&o.SubtotalCents,
		&o.TotalCents,
		&o.PaidAt,
		&o.CreatedAt,
	)
}

// CreateFromCart snapshots the cart into a pending order. Totals are
// computed from the cart's price snapshots; lines whose product was
// deleted in the meantime are excluded, consistent with cart views.
//
// Assumes it runs inside a transaction owned by the caller.
func (r *Repository) CreateFromCart(ctx context.Context, userID, cartID int64) (*Order, error) {
	var o Order
	err := scanOrder(r.q.QueryRow(ctx, `
INSERT INTO orders (user_id, cart_id, order_number, checkout_id, status, subtotal_cents, total_cents)
SELECT $1, $2, $3, $4, 'pending',
       COALESCE(SUM(ci.quantity * ci.price_cents), 0),
       COALESCE(SUM(ci.quantity * ci.price_cents), 0)
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $2
RETURNING `+orderColumns+`
`, userID, cartID, r.gen.Generate(userID), uuid.NewString()), &o)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	tag, err := r.q.Exec(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, quantity, price_at_purchase_cents)
SELECT $1, ci.product_id, p.name, ci.quantity, ci.price_cents
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $2
`, o.ID, cartID)
	if err != nil {
		return nil, fmt.Errorf("snapshot order items: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrEmptyCart
	}

	return &o, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	var o Order
	err := scanOrder(r.q.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE id = $1
`, id), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *Repository) GetDetailForUser(ctx context.Context, userID, orderID int64) (*OrderDetail, error) {
	var o Order
	err := scanOrder(r.q.QueryRow(ctx, `
SELECT `+orderColumns+`
FROM orders
WHERE id = $1 AND user_id = $2
`, orderID, userID), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order detail: %w", err)
	}

	items, err := r.Items(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: o, Items: items}, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Order, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.q.Query(ctx, `
SELECT `+orderColumns+`, COUNT(*) OVER() AS total
FROM orders
WHERE user_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	total := 0
	for rows.Next() {
		var o Order
		var t int
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.CartID,
			&o.OrderNumber,
			&o.CheckoutID,
			&o.Status,
			&o.SubtotalCents,
			&o.TotalCents,
			&o.PaidAt,
			&o.CreatedAt,
			&t,
		); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}
		if total == 0 {
			total = t
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *Repository) Items(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.q.Query(ctx, `
SELECT id, order_id, product_id, product_name, quantity, price_at_purchase_cents
FROM order_items
WHERE order_id = $1
ORDER BY id ASC
`, orderID)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceAtPurchaseCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// MarkPaid is idempotent: an already-paid order keeps its original
// paid_at.
func (r *Repository) MarkPaid(ctx context.Context, orderID int64) error {
	_, err := r.q.Exec(ctx, `
UPDATE orders
SET status = 'paid',
    paid_at = now()
WHERE id = $1
  AND status <> 'paid'
`, orderID)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	return nil
}

// ClaimPaymentEvent inserts the order id into the processed set. The
// primary key turns a replayed delivery into an affected-rows-zero
// insert rather than a second round of side effects.
func (r *Repository) ClaimPaymentEvent(ctx context.Context, orderID int64, checkoutID string) (bool, error) {
	tag, err := r.q.Exec(ctx, `
INSERT INTO processed_payment_events (order_id, checkout_id)
VALUES ($1, $2)
ON CONFLICT (order_id) DO NOTHING
`, orderID, checkoutID)
	if err != nil {
		return false, fmt.Errorf("claim payment event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
