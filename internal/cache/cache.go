// Package cache holds the read-side cache for cart views.
package cache

import (
	"context"
	"errors"

	"bazar/internal/domain/carts"
)

type CartCache interface {
	Get(ctx context.Context, ownerKey string) (*carts.CartView, error)
	Set(ctx context.Context, ownerKey string, view *carts.CartView) error
	Delete(ctx context.Context, ownerKey string) error
}

var ErrCacheMiss = errors.New("cache miss")
