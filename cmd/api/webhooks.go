package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bazar/internal/db"
	"bazar/internal/domain/carts"
	"bazar/internal/domain/orders"
	"bazar/internal/domain/products"
	"bazar/internal/events"
	"bazar/internal/identity"
	"bazar/internal/reconcile"
)

type PaymentWebhookPayload struct {
	CheckoutID string            `json:"checkout_id" validate:"required"`
	OrderID    int64             `json:"order_id" validate:"required,gt=0"`
	Metadata   map[string]string `json:"metadata" validate:"required"`
}

// paymentWebhookHandler receives the provider's payment-confirmed
// callback. The provider retries until it sees a 2xx, so the handler
// answers 200 for duplicates too; only a genuine failure gets a 5xx to
// provoke a retry.
func (app *application) paymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	var payload PaymentWebhookPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()

	order, err := app.orders.GetByID(ctx, payload.OrderID)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	if order.CheckoutID != payload.CheckoutID {
		app.badRequestResponse(w, r, fmt.Errorf("checkout id does not match order %d", payload.OrderID))
		return
	}

	paid, err := reconcile.DecodeMetadata(payload.OrderID, payload.CheckoutID, payload.Metadata)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var applied bool
	err = db.WithTx(ctx, app.pool, func(q db.Querier) error {
		rec := reconcile.New(
			products.NewRepository(q),
			carts.NewRepository(q),
			orders.NewRepository(q, app.orderNumbers),
			app.logger,
		)
		var err error
		applied, err = rec.Apply(ctx, paid)
		return err
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if applied {
		app.invalidateCartCache(ctx, identity.User(order.UserID))
		app.publishOrderPaid(order, paid)
		app.sendOrderConfirmation(order)
	}

	type webhookResponse struct {
		Processed bool `json:"processed"`
	}
	if err := app.jsonResponse(w, http.StatusOK, webhookResponse{Processed: applied}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) publishOrderPaid(order *orders.Order, paid *reconcile.PaidOrder) {
	payload := events.OrderPaidPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		TotalCents:  order.TotalCents,
	}
	for _, it := range paid.Items {
		payload.Items = append(payload.Items, events.ItemQty{ProductID: it.ProductID, Qty: it.Quantity})
	}

	key := strconv.FormatInt(order.ID, 10)
	env, err := events.NewEnvelope(events.EventOrderPaid, key, payload)
	if err != nil {
		app.logger.Errorw("building order paid event", "order_id", order.ID, "error", err)
		return
	}
	app.orderPaid.Publish(key, env)

	invPayload := events.InventoryUpdatedPayload{OrderID: order.ID, Items: payload.Items}
	invEnv, err := events.NewEnvelope(events.EventInventoryUpdated, key, invPayload)
	if err != nil {
		app.logger.Errorw("building inventory updated event", "order_id", order.ID, "error", err)
		return
	}
	app.invUpdated.Publish(key, invEnv)
}

// sendOrderConfirmation mails the receipt in the background; a mail
// failure never fails the webhook.
func (app *application) sendOrderConfirmation(order *orders.Order) {
	go func() {
		user, err := app.users.GetByID(context.Background(), order.UserID)
		if err != nil {
			app.logger.Errorw("loading user for confirmation email", "order_id", order.ID, "error", err)
			return
		}
		if err := app.mailer.SendOrderConfirmation(user.Email, user.Name, order.OrderNumber, order.TotalCents); err != nil {
			app.logger.Errorw("sending confirmation email", "order_id", order.ID, "error", err)
		}
	}()
}
