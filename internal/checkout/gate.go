// Package checkout gates a cart against live product state before an
// order snapshot is taken.
package checkout

import (
	"fmt"

	"bazar/internal/domain/carts"
	"bazar/internal/domain/products"
)

type PriceChange struct {
	ProductID int64 `json:"product_id"`
	OldCents  int64 `json:"old_cents"`
	NewCents  int64 `json:"new_cents"`
}

type Report struct {
	Valid           bool          `json:"valid"`
	Errors          []string      `json:"errors"`
	OutOfStockItems []int64       `json:"out_of_stock_items"`
	ModifiedPrices  []PriceChange `json:"modified_prices"`
}

// Validate checks every cart line against the current catalog row.
// Availability problems invalidate the cart; price drift is surfaced in
// ModifiedPrices but on its own leaves the cart valid, so the UI can
// warn without blocking.
//
// The result must be recomputed on every checkout attempt: product
// state moves independently of the cart.
func Validate(items []carts.CartItem, catalog map[int64]products.Product) Report {
	rep := Report{
		Valid:           true,
		Errors:          []string{},
		OutOfStockItems: []int64{},
		ModifiedPrices:  []PriceChange{},
	}

	for _, it := range items {
		p, ok := catalog[it.ProductID]
		if !ok || !p.IsActive {
			rep.Errors = append(rep.Errors, fmt.Sprintf("product %d is no longer available", it.ProductID))
			rep.Valid = false
			continue
		}

		if it.Quantity > p.InventoryQty {
			rep.OutOfStockItems = append(rep.OutOfStockItems, it.ProductID)
			rep.Errors = append(rep.Errors, fmt.Sprintf("product %d has only %d in stock", it.ProductID, p.InventoryQty))
			rep.Valid = false
		}

		if it.PriceCents != p.PriceCents {
			rep.ModifiedPrices = append(rep.ModifiedPrices, PriceChange{
				ProductID: it.ProductID,
				OldCents:  it.PriceCents,
				NewCents:  p.PriceCents,
			})
		}
	}

	return rep
}
