package main

import (
	"errors"
	"net/http"

	"bazar/internal/checkout"
	"bazar/internal/db"
	"bazar/internal/domain/carts"
	"bazar/internal/domain/orders"
	"bazar/internal/domain/products"
	"bazar/internal/reconcile"
)

func (app *application) validateCartHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	svc := checkout.NewService(app.carts, app.products, app.orders)
	report, err := svc.ValidateCart(r.Context(), owner)
	if err != nil {
		if errors.Is(err, carts.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, report); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CheckoutResponse struct {
	Order    *orders.Order     `json:"order"`
	Report   *checkout.Report  `json:"report"`
	Metadata map[string]string `json:"metadata"`
}

// beginCheckoutHandler validates the user's cart and freezes it into a
// pending order, all inside one transaction so a concurrent cart edit
// cannot slip between validation and the snapshot. The response carries
// the metadata map the payment provider echoes back on its webhook.
func (app *application) beginCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)
	ctx := r.Context()

	var (
		order  *orders.Order
		report *checkout.Report
	)
	err := db.WithTx(ctx, app.pool, func(q db.Querier) error {
		svc := checkout.NewService(
			carts.NewRepository(q),
			products.NewRepository(q),
			orders.NewRepository(q, app.orderNumbers),
		)

		var err error
		order, report, err = svc.BeginCheckout(ctx, user.ID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, carts.ErrNotFound), errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, orders.ErrEmptyCart):
			app.badRequestResponse(w, r, err)
		case errors.Is(err, checkout.ErrCartInvalid):
			app.unprocessableEntityResponse(w, r, report)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	items, err := app.orders.Items(ctx, order.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	paid := &reconcile.PaidOrder{
		OrderID:    order.ID,
		CheckoutID: order.CheckoutID,
		CartID:     order.CartID,
	}
	for _, it := range items {
		paid.Items = append(paid.Items, reconcile.PaidItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	resp := CheckoutResponse{
		Order:    order,
		Report:   report,
		Metadata: reconcile.EncodeMetadata(paid),
	}
	if err := app.jsonResponse(w, http.StatusCreated, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}
