package wishlists

import (
	"context"
	"errors"
	"fmt"

	"bazar/internal/db"
	"bazar/internal/identity"
)

// MergeStore adapts the wishlist schema to the generic merge engine.
type MergeStore struct {
	r *Repository
}

func NewMergeStore(q db.Querier) *MergeStore {
	return &MergeStore{r: NewRepository(q)}
}

func (s *MergeStore) FindByOwner(ctx context.Context, o identity.Owner) (int64, bool, error) {
	w, err := s.r.Find(ctx, o)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return w.ID, true, nil
}

func (s *MergeStore) Items(ctx context.Context, collectionID int64) ([]WishlistItem, error) {
	rows, err := s.r.db.Query(ctx, `
SELECT id, wishlist_id, product_id, notes, created_at, updated_at
FROM wishlist_items
WHERE wishlist_id = $1
ORDER BY id ASC
`, collectionID)
	if err != nil {
		return nil, fmt.Errorf("wishlist items: %w", err)
	}
	defer rows.Close()

	var out []WishlistItem
	for rows.Next() {
		var it WishlistItem
		if err := rows.Scan(&it.ID, &it.WishlistID, &it.ProductID, &it.Notes, &it.AddedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Insert keeps the guest's notes and added-at timestamp; a conflicting
// product on the user side wins and nothing is written.
func (s *MergeStore) Insert(ctx context.Context, collectionID int64, item WishlistItem) (bool, error) {
	tag, err := s.r.db.Exec(ctx, `
INSERT INTO wishlist_items (wishlist_id, product_id, notes, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (wishlist_id, product_id) DO NOTHING
`, collectionID, item.ProductID, item.Notes, item.AddedAt)
	if err != nil {
		return false, fmt.Errorf("insert merged item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *MergeStore) DeleteCollection(ctx context.Context, collectionID int64) error {
	return s.r.deleteWishlist(ctx, collectionID)
}

func (s *MergeStore) Repoint(ctx context.Context, collectionID, userID int64) error {
	_, err := s.r.db.Exec(ctx, `
UPDATE wishlists
SET user_id = $2,
    session_id = NULL,
    expires_at = NULL,
    updated_at = now()
WHERE id = $1
`, collectionID, userID)
	return err
}

func (s *MergeStore) Touch(ctx context.Context, collectionID int64) error {
	s.r.touch(ctx, collectionID)
	return nil
}
