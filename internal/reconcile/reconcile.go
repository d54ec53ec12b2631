package reconcile

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bazar/internal/domain/products"
)

type ProductStore interface {
	DecrementInventory(ctx context.Context, productID int64, qty int) error
}

type CartStore interface {
	ClearByID(ctx context.Context, cartID int64) error
}

type OrderStore interface {
	ClaimPaymentEvent(ctx context.Context, orderID int64, checkoutID string) (bool, error)
	MarkPaid(ctx context.Context, orderID int64) error
}

// Reconciler turns a confirmed payment into inventory decrements, an
// emptied cart, and a paid order. Meant to run inside one transaction
// so a mid-flight failure leaves nothing applied.
type Reconciler struct {
	products ProductStore
	carts    CartStore
	orders   OrderStore
	logger   *zap.SugaredLogger
}

func New(p ProductStore, c CartStore, o OrderStore, logger *zap.SugaredLogger) *Reconciler {
	return &Reconciler{products: p, carts: c, orders: o, logger: logger}
}

// Apply processes one payment confirmation. It claims the order id
// before touching anything else, so a redelivered webhook is a no-op:
// (false, nil) means the event was already processed.
func (r *Reconciler) Apply(ctx context.Context, po *PaidOrder) (bool, error) {
	claimed, err := r.orders.ClaimPaymentEvent(ctx, po.OrderID, po.CheckoutID)
	if err != nil {
		return false, fmt.Errorf("claim payment event: %w", err)
	}
	if !claimed {
		r.logger.Infow("duplicate payment event ignored", "order_id", po.OrderID, "checkout_id", po.CheckoutID)
		return false, nil
	}

	for _, it := range po.Items {
		err := r.products.DecrementInventory(ctx, it.ProductID, it.Quantity)
		if errors.Is(err, products.ErrNotFound) {
			r.logger.Warnw("paid item references missing product", "order_id", po.OrderID, "product_id", it.ProductID)
			continue
		}
		if err != nil {
			return false, fmt.Errorf("decrement inventory for product %d: %w", it.ProductID, err)
		}
	}

	if err := r.carts.ClearByID(ctx, po.CartID); err != nil {
		return false, fmt.Errorf("clear cart %d: %w", po.CartID, err)
	}

	if err := r.orders.MarkPaid(ctx, po.OrderID); err != nil {
		return false, fmt.Errorf("mark order %d paid: %w", po.OrderID, err)
	}

	r.logger.Infow("payment reconciled", "order_id", po.OrderID, "cart_id", po.CartID, "items", len(po.Items))
	return true, nil
}
