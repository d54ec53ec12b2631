package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bazar/internal/cache"
	"bazar/internal/domain/carts"
)

func (app *application) getCartHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)
	ctx := r.Context()

	if view, err := app.cartCache.Get(ctx, owner.String()); err == nil {
		if err := app.jsonResponse(w, http.StatusOK, view); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		app.logger.Warnw("cart cache read", "owner", owner.String(), "error", err)
	}

	view, err := app.carts.View(ctx, owner)
	if err != nil {
		if errors.Is(err, carts.ErrNotFound) {
			// No cart yet reads as an empty one.
			if err := app.jsonResponse(w, http.StatusOK, &carts.CartView{Items: []carts.CartLine{}}); err != nil {
				app.internalServerError(w, r, err)
			}
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.cartCache.Set(ctx, owner.String(), view); err != nil {
		app.logger.Warnw("cart cache write", "owner", owner.String(), "error", err)
	}

	if err := app.jsonResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

type AddCartItemPayload struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,gt=0"`
}

func (app *application) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	var payload AddCartItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	err := app.carts.AddItem(r.Context(), owner, payload.ProductID, payload.Quantity)
	if err != nil {
		app.cartErrorResponse(w, r, err)
		return
	}

	app.invalidateCartCache(r.Context(), owner)
	w.WriteHeader(http.StatusNoContent)
}

type UpdateCartItemPayload struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func (app *application) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateCartItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.carts.UpdateQuantity(r.Context(), owner, productID, payload.Quantity)
	if err != nil {
		app.cartErrorResponse(w, r, err)
		return
	}

	app.invalidateCartCache(r.Context(), owner)
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.carts.RemoveItem(r.Context(), owner, productID); err != nil {
		app.cartErrorResponse(w, r, err)
		return
	}

	app.invalidateCartCache(r.Context(), owner)
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	if err := app.carts.Clear(r.Context(), owner); err != nil {
		app.cartErrorResponse(w, r, err)
		return
	}

	app.invalidateCartCache(r.Context(), owner)
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) cartErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, carts.ErrProductUnavailable), errors.Is(err, carts.ErrInvalidQuantity):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, carts.ErrItemNotFound), errors.Is(err, carts.ErrNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
