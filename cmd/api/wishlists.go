package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bazar/internal/domain/wishlists"
)

func (app *application) getWishlistHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	view, err := app.wishlists.View(r.Context(), owner)
	if err != nil {
		if errors.Is(err, wishlists.ErrNotFound) {
			if err := app.jsonResponse(w, http.StatusOK, &wishlists.WishlistView{Items: []wishlists.WishlistLine{}}); err != nil {
				app.internalServerError(w, r, err)
			}
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

type AddWishlistItemPayload struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

func (app *application) addWishlistItemHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	var payload AddWishlistItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err := app.wishlists.AddItem(r.Context(), owner, payload.ProductID, payload.Notes)
	if err != nil {
		app.wishlistErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type UpdateWishlistItemPayload struct {
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

func (app *application) updateWishlistItemHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var payload UpdateWishlistItemPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.wishlists.UpdateNotes(r.Context(), owner, productID, payload.Notes)
	if err != nil {
		app.wishlistErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) removeWishlistItemHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.wishlists.RemoveItem(r.Context(), owner, productID); err != nil {
		app.wishlistErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) clearWishlistHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	if err := app.wishlists.Clear(r.Context(), owner); err != nil {
		app.wishlistErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// shareWishlistHandler hands out an opaque token for the owner's
// wishlist so it can be read by anyone holding the link.
func (app *application) shareWishlistHandler(w http.ResponseWriter, r *http.Request) {
	owner := getOwnerFromContext(r)

	wl, err := app.wishlists.GetOrCreate(r.Context(), owner)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	token, err := app.shareTokens.Encode(wl.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	type shareResponse struct {
		Token string `json:"token"`
	}
	if err := app.jsonResponse(w, http.StatusCreated, shareResponse{Token: token}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getSharedWishlistHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	wishlistID, err := app.shareTokens.Decode(token)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	view, err := app.wishlists.ViewByID(r.Context(), wishlistID)
	if err != nil {
		if errors.Is(err, wishlists.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, view); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) wishlistErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, wishlists.ErrProductUnavailable):
		app.badRequestResponse(w, r, err)
	case errors.Is(err, wishlists.ErrItemNotFound), errors.Is(err, wishlists.ErrNotFound):
		app.notFoundResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
