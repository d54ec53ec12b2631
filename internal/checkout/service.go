package checkout

import (
	"context"
	"errors"
	"fmt"

	"bazar/internal/domain/carts"
	"bazar/internal/domain/orders"
	"bazar/internal/domain/products"
	"bazar/internal/identity"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrCartInvalid = errors.New("cart failed validation")
)

type Service struct {
	carts    carts.Store
	products products.Store
	orders   orders.Store
}

func NewService(c carts.Store, p products.Store, o orders.Store) *Service {
	return &Service{carts: c, products: p, orders: o}
}

// ValidateCart runs the gate over the owner's current cart.
func (s *Service) ValidateCart(ctx context.Context, owner identity.Owner) (*Report, error) {
	cart, err := s.carts.Find(ctx, owner)
	if err != nil {
		return nil, err
	}

	items, err := s.carts.Items(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	rep, err := s.validateItems(ctx, items)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// BeginCheckout validates the cart and, if it passes, freezes it into a
// pending order. The caller is expected to run this inside one
// transaction so a validation race cannot leave a half-written order.
func (s *Service) BeginCheckout(ctx context.Context, userID int64) (*orders.Order, *Report, error) {
	owner := identity.User(userID)

	cart, err := s.carts.Find(ctx, owner)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.carts.Items(ctx, cart.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	rep, err := s.validateItems(ctx, items)
	if err != nil {
		return nil, nil, err
	}
	if !rep.Valid {
		return nil, rep, ErrCartInvalid
	}

	order, err := s.orders.CreateFromCart(ctx, userID, cart.ID)
	if err != nil {
		return nil, rep, fmt.Errorf("freeze cart into order: %w", err)
	}
	return order, rep, nil
}

func (s *Service) validateItems(ctx context.Context, items []carts.CartItem) (*Report, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	catalog, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products for validation: %w", err)
	}

	rep := Validate(items, catalog)
	return &rep, nil
}
