package wishlists

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

func ownerColumn(o identity.Owner) (string, any) {
	if o.IsUser() {
		return "user_id", o.UserID
	}
	return "session_id", o.SessionID
}

const wishlistColumns = `id, user_id, session_id, expires_at, created_at, updated_at`

func scanWishlist(row pgx.Row, w *Wishlist) error {
	return row.Scan(&w.ID, &w.UserID, &w.SessionID, &w.ExpiresAt, &w.CreatedAt, &w.UpdatedAt)
}

func (r *Repository) Find(ctx context.Context, owner identity.Owner) (*Wishlist, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	col, arg := ownerColumn(owner)
	var w Wishlist
	err := scanWishlist(r.db.QueryRow(ctx, fmt.Sprintf(`
SELECT %s
FROM wishlists
WHERE %s = $1
  AND (expires_at IS NULL OR expires_at > now())
LIMIT 1
`, wishlistColumns, col), arg), &w)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find wishlist: %w", err)
	}
	return &w, nil
}

// GetOrCreate mirrors the cart flow: first writer wins on the unique
// index, losers fetch the winner's row, and an expired guest row that
// still blocks the slot gets repaired in place.
func (r *Repository) GetOrCreate(ctx context.Context, owner identity.Owner) (*Wishlist, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	const maxAttempts = 2
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		w, err := r.Find(ctx, owner)
		if err == nil {
			return w, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		w, err = r.insert(ctx, owner)
		if err == nil {
			return w, nil
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			block, berr := r.findEvenIfExpired(ctx, owner)
			if berr != nil {
				return nil, berr
			}
			if block == nil {
				continue
			}
			if block.ExpiresAt != nil && !block.ExpiresAt.After(time.Now()) {
				if derr := r.deleteWishlist(ctx, block.ID); derr != nil {
					return nil, fmt.Errorf("remove expired wishlist: %w", derr)
				}
				continue
			}
			return block, nil
		}

		return nil, fmt.Errorf("create wishlist: %w", err)
	}

	return nil, fmt.Errorf("get or create wishlist: no row visible after conflict")
}

func (r *Repository) insert(ctx context.Context, owner identity.Owner) (*Wishlist, error) {
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

	var w Wishlist
	err := scanWishlist(r.db.QueryRow(ctx, `
INSERT INTO wishlists (user_id, session_id, expires_at)
VALUES ($1, $2, $3)
RETURNING `+wishlistColumns+`
`, userID, sessionID, expiresAt), &w)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) findEvenIfExpired(ctx context.Context, owner identity.Owner) (*Wishlist, error) {
	col, arg := ownerColumn(owner)
	var w Wishlist
	err := scanWishlist(r.db.QueryRow(ctx, fmt.Sprintf(`
SELECT %s
FROM wishlists
WHERE %s = $1
LIMIT 1
`, wishlistColumns, col), arg), &w)
	if err == nil {
		return &w, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return nil, fmt.Errorf("select blocking wishlist: %w", err)
}

func (r *Repository) deleteWishlist(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE wishlist_id = $1`, id); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM wishlists WHERE id = $1`, id)
	return err
}

func (r *Repository) touch(ctx context.Context, id int64) {
	_, _ = r.db.Exec(ctx, `UPDATE wishlists SET updated_at = now() WHERE id = $1`, id)
}

// AddItem upserts the product's line. Unlike the cart there is no
// quantity to merge; a re-add just replaces the notes.
func (r *Repository) AddItem(ctx context.Context, owner identity.Owner, productID int64, notes *string) error {
	w, err := r.GetOrCreate(ctx, owner)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
WITH p AS (
  SELECT id FROM products WHERE id = $2 AND is_active = true
)
INSERT INTO wishlist_items (wishlist_id, product_id, notes)
SELECT $1, p.id, $3
FROM p
ON CONFLICT (wishlist_id, product_id)
DO UPDATE SET
  notes      = EXCLUDED.notes,
  updated_at = now()
`, w.ID, productID, notes)
	if err != nil {
		return fmt.Errorf("add wishlist item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductUnavailable
	}

	r.touch(ctx, w.ID)
	return nil
}

func (r *Repository) UpdateNotes(ctx context.Context, owner identity.Owner, productID int64, notes *string) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	col, arg := ownerColumn(owner)
	var wishlistID int64
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
UPDATE wishlist_items wi
SET notes = $3,
    updated_at = now()
WHERE wi.product_id = $2
  AND wi.wishlist_id = (
    SELECT id FROM wishlists
    WHERE %s = $1
      AND (expires_at IS NULL OR expires_at > now())
    LIMIT 1
  )
RETURNING wi.wishlist_id
`, col), arg, productID, notes).Scan(&wishlistID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("update notes: %w", err)
	}

	r.touch(ctx, wishlistID)
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, owner identity.Owner, productID int64) error {
	if err := owner.Validate(); err != nil {
		return err
	}

	col, arg := ownerColumn(owner)
	var wishlistID int64
	err := r.db.QueryRow(ctx, fmt.Sprintf(`
DELETE FROM wishlist_items
WHERE product_id = $2
  AND wishlist_id = (
    SELECT id FROM wishlists
    WHERE %s = $1
      AND (expires_at IS NULL OR expires_at > now())
    LIMIT 1
  )
RETURNING wishlist_id
`, col), arg, productID).Scan(&wishlistID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrItemNotFound
		}
		return fmt.Errorf("remove wishlist item: %w", err)
	}

	r.touch(ctx, wishlistID)
	return nil
}

func (r *Repository) Clear(ctx context.Context, owner identity.Owner) error {
	w, err := r.Find(ctx, owner)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM wishlist_items WHERE wishlist_id = $1`, w.ID); err != nil {
		return fmt.Errorf("clear wishlist: %w", err)
	}
	r.touch(ctx, w.ID)
	return nil
}

func (r *Repository) View(ctx context.Context, owner identity.Owner) (*WishlistView, error) {
	w, err := r.Find(ctx, owner)
	if err != nil {
		return nil, err
	}
	return r.fillLines(ctx, w)
}

func (r *Repository) ViewByID(ctx context.Context, wishlistID int64) (*WishlistView, error) {
	var w Wishlist
	err := scanWishlist(r.db.QueryRow(ctx, `
SELECT `+wishlistColumns+`
FROM wishlists
WHERE id = $1
`, wishlistID), &w)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get wishlist by id: %w", err)
	}
	return r.fillLines(ctx, &w)
}

// Deleted products drop out via the INNER JOIN, same as cart views.
func (r *Repository) fillLines(ctx context.Context, w *Wishlist) (*WishlistView, error) {
	rows, err := r.db.Query(ctx, `
SELECT
  wi.id,
  wi.product_id,
  p.name,
  wi.notes,
  p.price_cents,
  p.is_active,
  p.in_stock,
  wi.created_at
FROM wishlist_items wi
JOIN products p ON p.id = wi.product_id
WHERE wi.wishlist_id = $1
ORDER BY wi.id ASC
`, w.ID)
	if err != nil {
		return nil, fmt.Errorf("wishlist lines: %w", err)
	}
	defer rows.Close()

	v := &WishlistView{Wishlist: *w, Items: []WishlistLine{}}
	for rows.Next() {
		var line WishlistLine
		if err := rows.Scan(
			&line.ItemID,
			&line.ProductID,
			&line.ProductName,
			&line.Notes,
			&line.CurrentPriceCents,
			&line.IsActive,
			&line.InStock,
			&line.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist line: %w", err)
		}
		v.Items = append(v.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("wishlist lines rows: %w", err)
	}
	return v, nil
}

func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
WITH dead AS (
  SELECT id FROM wishlists
  WHERE session_id IS NOT NULL
    AND expires_at IS NOT NULL
    AND expires_at <= now()
),
gone AS (
  DELETE FROM wishlist_items WHERE wishlist_id IN (SELECT id FROM dead)
)
DELETE FROM wishlists WHERE id IN (SELECT id FROM dead)
`)
	if err != nil {
		return 0, fmt.Errorf("delete expired wishlists: %w", err)
	}
	return tag.RowsAffected(), nil
}
