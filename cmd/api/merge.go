package main

import (
	"context"
	"fmt"

	"bazar/internal/db"
	"bazar/internal/domain/carts"
	"bazar/internal/domain/wishlists"
	"bazar/internal/identity"
	"bazar/internal/merge"
)

// mergeGuestCollections folds a guest session's cart and wishlist into
// the user's, both inside one transaction. A failure aborts the login
// so the client keeps its session id and can simply retry.
func (app *application) mergeGuestCollections(ctx context.Context, sessionID string, userID int64) error {
	guest := identity.Session(sessionID)
	user := identity.User(userID)

	err := db.WithTx(ctx, app.pool, func(q db.Querier) error {
		cartEngine := merge.NewEngine[carts.CartItem](carts.NewMergeStore(q), app.logger)
		if err := cartEngine.Merge(ctx, guest, user); err != nil {
			return fmt.Errorf("merge cart: %w", err)
		}

		wishlistEngine := merge.NewEngine[wishlists.WishlistItem](wishlists.NewMergeStore(q), app.logger)
		if err := wishlistEngine.Merge(ctx, guest, user); err != nil {
			return fmt.Errorf("merge wishlist: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Both owners' cached views are stale now.
	app.invalidateCartCache(ctx, guest)
	app.invalidateCartCache(ctx, user)
	return nil
}

func (app *application) invalidateCartCache(ctx context.Context, owner identity.Owner) {
	if err := app.cartCache.Delete(ctx, owner.String()); err != nil {
		app.logger.Warnw("invalidating cart cache", "owner", owner.String(), "error", err)
	}
}
