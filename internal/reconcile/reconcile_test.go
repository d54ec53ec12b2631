package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bazar/internal/domain/products"
)

type fakeProduct struct {
	inventoryQty int
	inStock      bool
}

type fakeProductStore struct {
	products map[int64]*fakeProduct
	err      error
}

func (s *fakeProductStore) DecrementInventory(_ context.Context, productID int64, qty int) error {
	if s.err != nil {
		return s.err
	}
	p, ok := s.products[productID]
	if !ok {
		return products.ErrNotFound
	}
	p.inventoryQty -= qty
	if p.inventoryQty < 0 {
		p.inventoryQty = 0
	}
	p.inStock = p.inventoryQty > 0
	return nil
}

type fakeCartStore struct {
	cleared []int64
	err     error
}

func (s *fakeCartStore) ClearByID(_ context.Context, cartID int64) error {
	if s.err != nil {
		return s.err
	}
	s.cleared = append(s.cleared, cartID)
	return nil
}

type fakeOrderStore struct {
	claimed map[int64]bool
	paid    map[int64]bool
	err     error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{claimed: make(map[int64]bool), paid: make(map[int64]bool)}
}

func (s *fakeOrderStore) ClaimPaymentEvent(_ context.Context, orderID int64, _ string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.claimed[orderID] {
		return false, nil
	}
	s.claimed[orderID] = true
	return true, nil
}

func (s *fakeOrderStore) MarkPaid(_ context.Context, orderID int64) error {
	s.paid[orderID] = true
	return nil
}

func setup(t *testing.T) (*Reconciler, *fakeProductStore, *fakeCartStore, *fakeOrderStore) {
	t.Helper()
	ps := &fakeProductStore{products: map[int64]*fakeProduct{
		1: {inventoryQty: 10, inStock: true},
		2: {inventoryQty: 3, inStock: true},
	}}
	cs := &fakeCartStore{}
	os := newFakeOrderStore()
	return New(ps, cs, os, zap.NewNop().Sugar()), ps, cs, os
}

func paidOrder() *PaidOrder {
	return &PaidOrder{
		OrderID:    5,
		CheckoutID: "chk-5",
		CartID:     9,
		Items: []PaidItem{
			{ProductID: 1, Quantity: 4},
			{ProductID: 2, Quantity: 1},
		},
	}
}

func TestApply_DecrementsAndClears(t *testing.T) {
	rec, ps, cs, os := setup(t)

	applied, err := rec.Apply(context.Background(), paidOrder())
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, 6, ps.products[1].inventoryQty)
	assert.Equal(t, 2, ps.products[2].inventoryQty)
	assert.Equal(t, []int64{9}, cs.cleared)
	assert.True(t, os.paid[5])
}

func TestApply_FloorsInventoryAtZero(t *testing.T) {
	rec, ps, _, _ := setup(t)

	po := paidOrder()
	po.Items = []PaidItem{{ProductID: 2, Quantity: 100}}

	applied, err := rec.Apply(context.Background(), po)
	require.NoError(t, err)
	assert.True(t, applied)

	assert.Equal(t, 0, ps.products[2].inventoryQty)
	assert.False(t, ps.products[2].inStock)
}

func TestApply_DuplicateDeliveryDecrementsOnce(t *testing.T) {
	rec, ps, cs, _ := setup(t)

	applied, err := rec.Apply(context.Background(), paidOrder())
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = rec.Apply(context.Background(), paidOrder())
	require.NoError(t, err)
	assert.False(t, applied, "second delivery must be a no-op")

	assert.Equal(t, 6, ps.products[1].inventoryQty, "inventory decremented exactly once")
	assert.Len(t, cs.cleared, 1)
}

func TestApply_MissingProductIsTolerated(t *testing.T) {
	rec, ps, _, os := setup(t)

	po := paidOrder()
	po.Items = append(po.Items, PaidItem{ProductID: 999, Quantity: 1})

	applied, err := rec.Apply(context.Background(), po)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 6, ps.products[1].inventoryQty)
	assert.True(t, os.paid[5])
}

func TestApply_DecrementErrorAborts(t *testing.T) {
	rec, ps, cs, os := setup(t)
	ps.err = fmt.Errorf("database gone")

	applied, err := rec.Apply(context.Background(), paidOrder())
	require.Error(t, err)
	assert.False(t, applied)
	assert.Empty(t, cs.cleared)
	assert.False(t, os.paid[5])
}

func TestApply_ClaimErrorPropagates(t *testing.T) {
	rec, _, _, os := setup(t)
	os.err = fmt.Errorf("database gone")

	_, err := rec.Apply(context.Background(), paidOrder())
	require.Error(t, err)
	assert.ErrorContains(t, err, "claim payment event")
}
