package carts

import (
	"context"
	"errors"
	"fmt"

	"bazar/internal/db"
	"bazar/internal/identity"
)

// MergeStore adapts the carts schema to the generic merge engine. It is
// built on a plain Querier so the whole merge can run inside one
// transaction driven by the caller.
type MergeStore struct {
	r *Repository
}

func NewMergeStore(q db.Querier) *MergeStore {
	return &MergeStore{r: NewRepository(q)}
}

func (s *MergeStore) FindByOwner(ctx context.Context, o identity.Owner) (int64, bool, error) {
	c, err := s.r.Find(ctx, o)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return c.ID, true, nil
}

func (s *MergeStore) Items(ctx context.Context, collectionID int64) ([]CartItem, error) {
	return s.r.Items(ctx, collectionID)
}

// Insert copies a guest line into the target cart, preserving quantity,
// price snapshot and the original added-at timestamp. When the target
// already holds the product, nothing is written: the user's line wins.
func (s *MergeStore) Insert(ctx context.Context, collectionID int64, item CartItem) (bool, error) {
	tag, err := s.r.db.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, quantity, price_cents, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (cart_id, product_id) DO NOTHING
`, collectionID, item.ProductID, item.Quantity, item.PriceCents, item.AddedAt)
	if err != nil {
		return false, fmt.Errorf("insert merged item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *MergeStore) DeleteCollection(ctx context.Context, collectionID int64) error {
	return s.r.deleteCart(ctx, collectionID)
}

// Repoint hands the whole collection to the user: the session key is
// cleared and the guest expiry dropped.
func (s *MergeStore) Repoint(ctx context.Context, collectionID, userID int64) error {
	_, err := s.r.db.Exec(ctx, `
UPDATE carts
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
