package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazar/internal/domain/carts"
)

func setupCache(t *testing.T) *RedisCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client)
}

func sampleView() *carts.CartView {
	return &carts.CartView{
		Cart: carts.Cart{ID: 1},
		Items: []carts.CartLine{
			{ProductID: 10, Quantity: 2, PriceCents: 500, LineTotalCents: 1000},
		},
		SubtotalCents: 1000,
	}
}

func TestRedisCache_MissThenHit(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "session:abc")
	require.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "session:abc", sampleView()))

	got, err := c.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.SubtotalCents)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(10), got.Items[0].ProductID)
}

func TestRedisCache_Delete(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "user:7", sampleView()))
	require.NoError(t, c.Delete(ctx, "user:7"))

	_, err := c.Get(ctx, "user:7")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_KeysAreOwnerScoped(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "user:7", sampleView()))

	_, err := c.Get(ctx, "user:8")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
