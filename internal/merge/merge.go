// Package merge folds a guest-owned collection into the authenticated
// user's collection at login. Carts and wishlists share the exact same
// transfer rules, so one engine is parameterized over the line-item
// shape instead of duplicating the flow per entity.
package merge

import (
	"context"
	"errors"
	"fmt"

	"bazar/internal/identity"

	"go.uber.org/zap"
)

// ErrBadOwners means the source was not a guest session or the target
// was not a user.
var ErrBadOwners = errors.New("merge requires a session source and a user target")

// Item is one line of an owned collection, keyed by product id.
type Item interface {
	Key() int64
}

// Store is the minimal surface the engine needs over a cart- or
// wishlist-shaped collection. Implementations are expected to be bound
// to a transaction supplied by the caller.
type Store[I Item] interface {
	FindByOwner(ctx context.Context, o identity.Owner) (int64, bool, error)
	Items(ctx context.Context, collectionID int64) ([]I, error)

	// Insert reports false when the target already holds an item with
	// the same key; the engine treats that as "user data wins".
	Insert(ctx context.Context, collectionID int64, item I) (bool, error)

	DeleteCollection(ctx context.Context, collectionID int64) error
	Repoint(ctx context.Context, collectionID, userID int64) error
	Touch(ctx context.Context, collectionID int64) error
}

type Engine[I Item] struct {
	store  Store[I]
	logger *zap.SugaredLogger
}

func NewEngine[I Item](s Store[I], logger *zap.SugaredLogger) *Engine[I] {
	return &Engine[I]{store: s, logger: logger}
}

// Merge transfers the guest collection into the user's and deletes the
// guest side. An absent guest collection is a successful no-op, which is
// what makes retries safe: once a merge completes, the next attempt
// finds nothing and returns immediately.
//
// Conflict policy: when both sides hold the same product, the user's
// line is kept untouched and the guest line is dropped. Quantities are
// never summed across owners.
func (e *Engine[I]) Merge(ctx context.Context, guest, user identity.Owner) error {
	if !guest.IsSession() || !user.IsUser() {
		return ErrBadOwners
	}
	if err := guest.Validate(); err != nil {
		return err
	}
	if err := user.Validate(); err != nil {
		return err
	}

	guestID, ok, err := e.store.FindByOwner(ctx, guest)
	if err != nil {
		return fmt.Errorf("resolve guest collection: %w", err)
	}
	if !ok {
		// Already merged, expired, or never existed.
		return nil
	}

	userID, found, err := e.store.FindByOwner(ctx, user)
	if err != nil {
		return fmt.Errorf("resolve user collection: %w", err)
	}

	// Two cases collapse into re-pointing ownership without touching a
	// single item: the session row was already linked to this user, or
	// the user has no collection yet and can simply adopt the guest's.
	// Either way the original added-at timestamps survive.
	if !found || userID == guestID {
		if err := e.store.Repoint(ctx, guestID, user.UserID); err != nil {
			return fmt.Errorf("repoint collection %d: %w", guestID, err)
		}
		e.logger.Infow("guest collection adopted",
			"collection_id", guestID,
			"user_id", user.UserID,
		)
		return nil
	}

	items, err := e.store.Items(ctx, guestID)
	if err != nil {
		return fmt.Errorf("load guest items: %w", err)
	}

	moved := 0
	for _, it := range items {
		inserted, err := e.store.Insert(ctx, userID, it)
		if err != nil {
			return fmt.Errorf("move item %d: %w", it.Key(), err)
		}
		if inserted {
			moved++
		}
	}

	if err := e.store.DeleteCollection(ctx, guestID); err != nil {
		return fmt.Errorf("delete guest collection %d: %w", guestID, err)
	}
	if err := e.store.Touch(ctx, userID); err != nil {
		return fmt.Errorf("touch user collection %d: %w", userID, err)
	}

	e.logger.Infow("guest collection merged",
		"guest_collection_id", guestID,
		"user_collection_id", userID,
		"moved", moved,
		"dropped", len(items)-moved,
	)
	return nil
}
