package main

import (
	"context"
	"time"
)

// reapExpiredCollectionsEvery drops expired guest carts and wishlists
// on a fixed interval. Runs once at startup so a restart does not wait
// a full interval to catch up.
func (app *application) reapExpiredCollectionsEvery(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		app.reapExpiredCollections()

		for range ticker.C {
			app.reapExpiredCollections()
		}
	}()
}

func (app *application) reapExpiredCollections() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reapedCarts, err := app.carts.DeleteExpired(ctx)
	if err != nil {
		app.logger.Errorw("reaping expired carts", "error", err)
	}

	reapedWishlists, err := app.wishlists.DeleteExpired(ctx)
	if err != nil {
		app.logger.Errorw("reaping expired wishlists", "error", err)
	}

	if reapedCarts > 0 || reapedWishlists > 0 {
		app.logger.Infow("expired guest collections reaped",
			"carts", reapedCarts,
			"wishlists", reapedWishlists,
		)
	}
}
