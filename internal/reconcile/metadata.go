// Package reconcile applies confirmed payments to inventory and carts.
package reconcile

import (
	"fmt"
	"strconv"
)

type PaidItem struct {
	ProductID int64
	Quantity  int
}

// PaidOrder is the typed form of a payment provider confirmation.
type PaidOrder struct {
	OrderID    int64
	CheckoutID string
	CartID     int64
	Items      []PaidItem
}

// DecodeMetadata parses the provider's flattened metadata map
// (cart_id, item_count, item_{i}_id, item_{i}_quantity) into a
// PaidOrder. Indexes start at zero. Any missing or malformed entry is
// an error: a partial decode must never reach inventory.
func DecodeMetadata(orderID int64, checkoutID string, meta map[string]string) (*PaidOrder, error) {
	cartID, err := metaInt(meta, "cart_id")
	if err != nil {
		return nil, err
	}

	count, err := metaInt(meta, "item_count")
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("metadata item_count is negative: %d", count)
	}

	po := &PaidOrder{
		OrderID:    orderID,
		CheckoutID: checkoutID,
		CartID:     cartID,
		Items:      make([]PaidItem, 0, count),
	}

	for i := 0; i < int(count); i++ {
		id, err := metaInt(meta, fmt.Sprintf("item_%d_id", i))
		if err != nil {
			return nil, err
		}
		qty, err := metaInt(meta, fmt.Sprintf("item_%d_quantity", i))
		if err != nil {
			return nil, err
		}
		if qty <= 0 {
			return nil, fmt.Errorf("metadata item_%d_quantity must be positive, got %d", i, qty)
		}
		po.Items = append(po.Items, PaidItem{ProductID: id, Quantity: int(qty)})
	}

	return po, nil
}

// EncodeMetadata is the inverse of DecodeMetadata, used when handing a
// pending order to the payment provider.
func EncodeMetadata(po *PaidOrder) map[string]string {
	meta := map[string]string{
		"cart_id":    strconv.FormatInt(po.CartID, 10),
		"item_count": strconv.Itoa(len(po.Items)),
	}
	for i, it := range po.Items {
		meta[fmt.Sprintf("item_%d_id", i)] = strconv.FormatInt(it.ProductID, 10)
		meta[fmt.Sprintf("item_%d_quantity", i)] = strconv.Itoa(it.Quantity)
	}
	return meta
}

func metaInt(meta map[string]string, key string) (int64, error) {
	raw, ok := meta[key]
	if !ok {
		return 0, fmt.Errorf("metadata missing %q", key)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("metadata %q is not a number: %q", key, raw)
	}
	return n, nil
}
