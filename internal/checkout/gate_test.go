package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazar/internal/domain/carts"
	"bazar/internal/domain/products"
)

func TestValidate_AllGood(t *testing.T) {
	items := []carts.CartItem{
		{ProductID: 1, Quantity: 2, PriceCents: 1000},
	}
	catalog := map[int64]products.Product{
		1: {ID: 1, PriceCents: 1000, IsActive: true, InStock: true, InventoryQty: 10},
	}

	rep := Validate(items, catalog)

	assert.True(t, rep.Valid)
	assert.Empty(t, rep.Errors)
	assert.Empty(t, rep.OutOfStockItems)
	assert.Empty(t, rep.ModifiedPrices)
}

func TestValidate_MissingProductInvalidates(t *testing.T) {
	items := []carts.CartItem{
		{ProductID: 42, Quantity: 1, PriceCents: 500},
	}

	rep := Validate(items, map[int64]products.Product{})

	assert.False(t, rep.Valid)
	require.Len(t, rep.Errors, 1)
	assert.Contains(t, rep.Errors[0], "42")
}

func TestValidate_InactiveProductInvalidates(t *testing.T) {
	items := []carts.CartItem{
		{ProductID: 1, Quantity: 1, PriceCents: 500},
	}
	catalog := map[int64]products.Product{
		1: {ID: 1, PriceCents: 500, IsActive: false, InventoryQty: 10},
	}

	rep := Validate(items, catalog)

	assert.False(t, rep.Valid)
	assert.Len(t, rep.Errors, 1)
}

func TestValidate_InsufficientStockInvalidates(t *testing.T) {
	items := []carts.CartItem{
		{ProductID: 1, Quantity: 5, PriceCents: 500},
	}
	catalog := map[int64]products.Product{
		1: {ID: 1, PriceCents: 500, IsActive: true, InventoryQty: 2},
	}

	rep := Validate(items, catalog)

	assert.False(t, rep.Valid)
	assert.Equal(t, []int64{1}, rep.OutOfStockItems)
}

func TestValidate_PriceDriftWarnsWithoutBlocking(t *testing.T) {
	items := []carts.CartItem{
		{ProductID: 1, Quantity: 1, PriceCents: 1000},
	}
	catalog := map[int64]products.Product{
		1: {ID: 1, PriceCents: 1200, IsActive: true, InventoryQty: 10},
	}

	rep := Validate(items, catalog)

	assert.True(t, rep.Valid, "price drift alone must not block checkout")
	require.Len(t, rep.ModifiedPrices, 1)
	assert.Equal(t, int64(1000), rep.ModifiedPrices[0].OldCents)
	assert.Equal(t, int64(1200), rep.ModifiedPrices[0].NewCents)
}

func TestValidate_MixedProblems(t *testing.T) {
	items := []carts.CartItem{
		{ProductID: 1, Quantity: 1, PriceCents: 1000},  // fine
		{ProductID: 2, Quantity: 10, PriceCents: 300},  // not enough stock
		{ProductID: 3, Quantity: 1, PriceCents: 700},   // gone
		{ProductID: 4, Quantity: 1, PriceCents: 100},   // price changed
	}
	catalog := map[int64]products.Product{
		1: {ID: 1, PriceCents: 1000, IsActive: true, InventoryQty: 5},
		2: {ID: 2, PriceCents: 300, IsActive: true, InventoryQty: 3},
		4: {ID: 4, PriceCents: 150, IsActive: true, InventoryQty: 5},
	}

	rep := Validate(items, catalog)

	assert.False(t, rep.Valid)
	assert.Equal(t, []int64{2}, rep.OutOfStockItems)
	assert.Len(t, rep.ModifiedPrices, 1)
	assert.Len(t, rep.Errors, 2)
}
