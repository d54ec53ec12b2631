package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bazar/internal/domain/carts"
	"bazar/internal/domain/orders"
	"bazar/internal/domain/products"
	"bazar/internal/identity"
)

// Stubs embed the interface and override only what the service calls.

type stubCarts struct {
	carts.Store
	cart    *carts.Cart
	items   []carts.CartItem
	findErr error
}

func (s *stubCarts) Find(context.Context, identity.Owner) (*carts.Cart, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.cart, nil
}

func (s *stubCarts) Items(context.Context, int64) ([]carts.CartItem, error) {
	return s.items, nil
}

type stubProducts struct {
	products.Store
	catalog map[int64]products.Product
}

func (s *stubProducts) GetMany(context.Context, []int64) (map[int64]products.Product, error) {
	return s.catalog, nil
}

type stubOrders struct {
	orders.Store
	created *orders.Order
	calls   int
}

func (s *stubOrders) CreateFromCart(_ context.Context, userID, cartID int64) (*orders.Order, error) {
	s.calls++
	s.created = &orders.Order{ID: 100, UserID: userID, CartID: cartID, Status: "pending"}
	return s.created, nil
}

func TestValidateCart(t *testing.T) {
	cs := &stubCarts{
		cart:  &carts.Cart{ID: 1},
		items: []carts.CartItem{{ProductID: 10, Quantity: 1, PriceCents: 500}},
	}
	ps := &stubProducts{catalog: map[int64]products.Product{
		10: {ID: 10, PriceCents: 500, IsActive: true, InventoryQty: 5},
	}}

	svc := NewService(cs, ps, &stubOrders{})
	rep, err := svc.ValidateCart(context.Background(), identity.Session("s1"))
	require.NoError(t, err)
	assert.True(t, rep.Valid)
}

func TestValidateCart_NoCart(t *testing.T) {
	cs := &stubCarts{findErr: carts.ErrNotFound}

	svc := NewService(cs, &stubProducts{}, &stubOrders{})
	_, err := svc.ValidateCart(context.Background(), identity.Session("s1"))
	assert.ErrorIs(t, err, carts.ErrNotFound)
}

func TestBeginCheckout_EmptyCart(t *testing.T) {
	cs := &stubCarts{cart: &carts.Cart{ID: 1}}
	os := &stubOrders{}

	svc := NewService(cs, &stubProducts{}, os)
	_, _, err := svc.BeginCheckout(context.Background(), 7)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, os.calls)
}

func TestBeginCheckout_InvalidCartReturnsReport(t *testing.T) {
	cs := &stubCarts{
		cart:  &carts.Cart{ID: 1},
		items: []carts.CartItem{{ProductID: 10, Quantity: 5, PriceCents: 500}},
	}
	ps := &stubProducts{catalog: map[int64]products.Product{
		10: {ID: 10, PriceCents: 500, IsActive: true, InventoryQty: 2},
	}}
	os := &stubOrders{}

	svc := NewService(cs, ps, os)
	_, rep, err := svc.BeginCheckout(context.Background(), 7)
	require.ErrorIs(t, err, ErrCartInvalid)
	require.NotNil(t, rep)
	assert.Equal(t, []int64{10}, rep.OutOfStockItems)
	assert.Zero(t, os.calls, "no order must be created for an invalid cart")
}

func TestBeginCheckout_Success(t *testing.T) {
	cs := &stubCarts{
		cart:  &carts.Cart{ID: 3},
		items: []carts.CartItem{{ProductID: 10, Quantity: 1, PriceCents: 500}},
	}
	ps := &stubProducts{catalog: map[int64]products.Product{
		10: {ID: 10, PriceCents: 500, IsActive: true, InventoryQty: 5},
	}}
	os := &stubOrders{}

	svc := NewService(cs, ps, os)
	order, rep, err := svc.BeginCheckout(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, rep.Valid)
	require.NotNil(t, order)
	assert.Equal(t, int64(7), order.UserID)
	assert.Equal(t, int64(3), order.CartID)
	assert.Equal(t, 1, os.calls)
}

func TestBeginCheckout_PriceDriftStillChecksOut(t *testing.T) {
	cs := &stubCarts{
		cart:  &carts.Cart{ID: 3},
		items: []carts.CartItem{{ProductID: 10, Quantity: 1, PriceCents: 500}},
	}
	ps := &stubProducts{catalog: map[int64]products.Product{
		10: {ID: 10, PriceCents: 700, IsActive: true, InventoryQty: 5},
	}}
	os := &stubOrders{}

	svc := NewService(cs, ps, os)
	order, rep, err := svc.BeginCheckout(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Len(t, rep.ModifiedPrices, 1)
}
