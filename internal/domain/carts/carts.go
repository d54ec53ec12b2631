package carts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bazar/internal/db"
	"bazar/internal/identity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const defaultGuestTTL = 30 * 24 * time.Hour

type Repository struct {
	db  db.Querier
	ttl time.Duration
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q, ttl: defaultGuestTTL}
}

func NewRepositoryWithTTL(q db.Querier, ttl time.Duration) *Repository {
	return &Repository{db: q, ttl: ttl}
}

// ownerColumn maps an owner to the column that keys their cart. The
// returned name is one of two fixed strings, never caller input.
func ownerColumn(o identity.Owner) (string, any) {
	if o.IsUser() {
		return "user_id", o.UserID
	}
	return "session_id", o.SessionID
}

const cartColumns = `id, user_id, session_id, expires_at, created_at, updated_at`

func scanCart(row pgx.Row, c *Cart) error {
	return row.Scan(&c.ID, &c.UserID, &c.SessionID, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
}

// Find returns the owner's current non-expired cart, or ErrNotFound.
func (r *Repository) Find(ctx context.Context, owner identity.Owner) (*Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	col, arg := ownerColumn(owner)
	var c Cart
	err := scanCart(r.db.QueryRow(ctx, fmt.Sprintf(`
SELECT %s
FROM carts
WHERE %s = $1
  AND (expires_at IS NULL OR expires_at > now())
LIMIT 1
`, cartColumns, col), arg), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return &c, nil
}

// GetOrCreate returns the owner's cart, creating one lazily if none
// exists. Safe to call concurrently for the same owner: the partial
// unique index makes the first writer win, and losers fetch that row.
//
// An expired guest cart still occupies the unique slot until the reaper
// removes it, so on conflict the blocking row is inspected and repaired
// here rather than left to block new carts.
func (r *Repository) GetOrCreate(ctx context.Context, owner identity.Owner) (*Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	const maxAttempts = 2
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		c, err := r.Find(ctx, owner)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		c, err = r.insert(ctx, owner)
		if err == nil {
			return c, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			block, berr := r.findEvenIfExpired(ctx, owner)
			if berr != nil {
				return nil, berr
			}
			if block == nil {
				// Conflict but no visible row: lost a read-committed
				// race. One retry resolves it.
				continue
			}
			if block.ExpiresAt != nil && !block.ExpiresAt.After(time.Now()) {
				if derr := r.deleteCart(ctx, block.ID); derr != nil {
					return nil, fmt.Errorf("remove expired cart: %w", derr)
				}
				continue
			}
			return block, nil
		}

		return nil, fmt.Errorf("create cart: %w", err)
	}

	return nil, fmt.Errorf("get or create cart: no row visible after conflict")
}

func (r *Repository) insert(ctx context.Context, owner identity.Owner) (*Cart, error) {
	var userID *int64
	var sessionID *string
	var expiresAt *time.Time

	if owner.IsUser() {
		userID = &owner.UserID
	} else {
		sessionID = &owner.SessionID
		exp := time.Now().Add(r.ttl)
		expiresAt = &exp
	}

	var c Cart
	err := scanCart(r.db.QueryRow(ctx, `
INSERT INTO carts (user_id, session_id, expires_at)
VALUES ($1, $2, $3)
RETURNING `+cartColumns+`
`, userID, sessionID, expiresAt), &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) findEvenIfExpired(ctx context.Context, owner identity.Owner) (*Cart, error) {
	col, arg := ownerColumn(owner)
	var c Cart
	err := scanCart(r.db.QueryRow(ctx, fmt.Sprintf(`
SELECT %s
FROM carts
WHERE %s = $1
LIMIT 1
`, cartColumns, col), arg), &c)
	if err == nil {
		return &c, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return nil, fmt.Errorf("select blocking cart: %w", err)
}

func (r *Repository) deleteCart(ctx context.Context, cartID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	return err
}

func (r *Repository) touch(ctx context.Context, cartID int64) {
	_, _ = r.db.Exec(ctx, `UPDATE carts SET updated_at = now() WHERE id = $1`, cartID)
}

// AddItem upserts a line for the product: re-adding merges quantities
// instead of inserting a duplicate row. The price snapshot taken on the
// first add is kept so later drift stays visible at checkout.
func (r *Repository) AddItem(ctx context.Context, owner identity.Owner, productID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	cart, err := r.GetOrCreate(ctx, owner)
	if err != nil {
		return err
	}

	// The CTE yields no row for an inactive or missing product, so the
	// INSERT affects nothing and we can distinguish that case below.
	tag, err := r.db.Exec(ctx, `
WITH p AS (
  SELECT price_cents
  FROM products
  WHERE id = $2 AND is_active = true
)
INSERT INTO cart_items (cart_id, product_id, quantity, price_cents)
SELECT $1, $2, $3, p.price_cents
FROM p
ON CONFLICT (cart_id, product_id)
DO UPDATE SET
  quantity   = cart_items.quantity + EXCLUDED.quantity,
  updated_at = now()
`, cart.ID, productID, qty)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductUnavailable
	}

	r.touch(ctx, cart.ID)
	return nil
}

// UpdateQuantity sets the line quantity. Zero removes the line; negative
// values are rejected.
func (r *Repository) UpdateQuantity(ctx context.Context, owner identity.Owner, productID int64, qty int) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty == 0 {
		return r.RemoveItem(ctx, owner, productID)
	}
	if err := owner.Validate(); err != nil {
		return err
	}

	col, arg := ownerColumn(owner)
	var cartID int64
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
UPDATE cart_items ci
SET quantity = $3,
    updated_at = now()
WHERE ci.product_id = $2
  AND ci.cart_id = (
    SELECT id FROM carts
    WHERE %s = $1
      AND (expires_at IS NULL OR expires_at > now())
    LIMIT 1
  )
RETURNING ci.cart_id
`, col), arg, productID, qty).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("update quantity: %w", err)
	}

	r.touch(ctx, cartID)
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, owner identity.Owner, productID int64) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	col, arg := ownerColumn(owner)
	var cartID int64
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
DELETE FROM cart_items
WHERE product_id = $2
  AND cart_id = (
    SELECT id FROM carts
    WHERE %s = $1
      AND (expires_at IS NULL OR expires_at > now())
    LIMIT 1
  )
RETURNING cart_id
`, col), arg, productID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("remove item: %w", err)
	}

	r.touch(ctx, cartID)
	return nil
}

func (r *Repository) Clear(ctx context.Context, owner identity.Owner) error {
	cart, err := r.Find(ctx, owner)
	if err != nil {
		return err
	}
	return r.ClearByID(ctx, cart.ID)
}

// ClearByID deletes the cart's items but keeps the cart row; empty rows
// are the reaper's business.
func (r *Repository) ClearByID(ctx context.Context, cartID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	r.touch(ctx, cartID)
	return nil
}

func (r *Repository) View(ctx context.Context, owner identity.Owner) (*CartView, error) {
	cart, err := r.Find(ctx, owner)
	if err != nil {
		return nil, err
	}
	return r.fillLines(ctx, cart)
}

func (r *Repository) ViewByID(ctx context.Context, cartID int64) (*CartView, error) {
	var c Cart
	err := scanCart(r.db.QueryRow(ctx, `
SELECT `+cartColumns+`
FROM carts
WHERE id = $1
`, cartID), &c)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cart by id: %w", err)
	}
	return r.fillLines(ctx, &c)
}

// fillLines joins items with the live product row. The INNER JOIN drops
// lines whose product has been deleted: dangling references disappear
// from output instead of erroring.
func (r *Repository) fillLines(ctx context.Context, cart *Cart) (*CartView, error) {
	rows, err := r.db.Query(ctx, `
SELECT
  ci.id,
  ci.product_id,
  p.name,
  ci.quantity,
  ci.price_cents,
  p.price_cents,
  ci.quantity * ci.price_cents AS line_total_cents,
  p.is_active,
  p.in_stock,
  p.inventory_qty,
  ci.created_at
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.id ASC
`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("cart lines: %w", err)
	}
	defer rows.Close()

	v := &CartView{Cart: *cart, Items: []CartLine{}}
	for rows.Next() {
		var line CartLine
		if err := rows.Scan(
			&line.ItemID,
			&line.ProductID,
			&line.ProductName,
			&line.Quantity,
			&line.PriceCents,
			&line.CurrentPriceCents,
			&line.LineTotalCents,
			&line.IsActive,
			&line.InStock,
			&line.InventoryQty,
			&line.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		v.SubtotalCents += line.LineTotalCents
		v.Items = append(v.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cart lines rows: %w", err)
	}
	return v, nil
}

func (r *Repository) Items(ctx context.Context, cartID int64) ([]CartItem, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, cart_id, product_id, quantity, price_cents, created_at, updated_at
FROM cart_items
WHERE cart_id = $1
ORDER BY id ASC
`, cartID)
	if err != nil {
		return nil, fmt.Errorf("cart items: %w", err)
	}
	defer rows.Close()

	var out []CartItem
	for rows.Next() {
		var it CartItem
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.PriceCents, &it.AddedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// DeleteExpired reaps guest carts past their expiry, items first. It
// only touches rows that are already terminal, so it commutes with live
// traffic and needs no coordination.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
WITH dead AS (
  SELECT id FROM carts
  WHERE session_id IS NOT NULL
    AND expires_at IS NOT NULL
    AND expires_at <= now()
),
gone AS (
  DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM dead)
)
DELETE FROM carts WHERE id IN (SELECT id FROM dead)
`)
	if err != nil {
		return 0, fmt.Errorf("delete expired carts: %w", err)
	}
	return tag.RowsAffected(), nil
}
