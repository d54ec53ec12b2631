package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMetadata(t *testing.T) {
	meta := map[string]string{
		"cart_id":         "9",
		"item_count":      "2",
		"item_0_id":       "101",
		"item_0_quantity": "2",
		"item_1_id":       "102",
		"item_1_quantity": "1",
	}

	po, err := DecodeMetadata(5, "chk-1", meta)
	require.NoError(t, err)

	assert.Equal(t, int64(5), po.OrderID)
	assert.Equal(t, "chk-1", po.CheckoutID)
	assert.Equal(t, int64(9), po.CartID)
	require.Len(t, po.Items, 2)
	assert.Equal(t, PaidItem{ProductID: 101, Quantity: 2}, po.Items[0])
	assert.Equal(t, PaidItem{ProductID: 102, Quantity: 1}, po.Items[1])
}

func TestDecodeMetadata_MissingCartID(t *testing.T) {
	_, err := DecodeMetadata(5, "chk-1", map[string]string{"item_count": "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart_id")
}

func TestDecodeMetadata_MissingItemEntry(t *testing.T) {
	meta := map[string]string{
		"cart_id":    "9",
		"item_count": "2",
		"item_0_id":  "101", "item_0_quantity": "2",
		// item_1_* absent
	}

	_, err := DecodeMetadata(5, "chk-1", meta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item_1_id")
}

func TestDecodeMetadata_RejectsNonPositiveQuantity(t *testing.T) {
	meta := map[string]string{
		"cart_id":         "9",
		"item_count":      "1",
		"item_0_id":       "101",
		"item_0_quantity": "0",
	}

	_, err := DecodeMetadata(5, "chk-1", meta)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive")
}

func TestDecodeMetadata_RejectsGarbageNumbers(t *testing.T) {
	meta := map[string]string{
		"cart_id":    "not-a-number",
		"item_count": "1",
	}

	_, err := DecodeMetadata(5, "chk-1", meta)
	require.Error(t, err)
}

func TestEncodeDecodeMetadata_RoundTrip(t *testing.T) {
	po := &PaidOrder{
		OrderID:    7,
		CheckoutID: "chk-7",
		CartID:     3,
		Items: []PaidItem{
			{ProductID: 11, Quantity: 4},
			{ProductID: 12, Quantity: 1},
		},
	}

	meta := EncodeMetadata(po)
	decoded, err := DecodeMetadata(po.OrderID, po.CheckoutID, meta)
	require.NoError(t, err)
	assert.Equal(t, po, decoded)
}

func TestDecodeMetadata_EmptyOrder(t *testing.T) {
	meta := map[string]string{
		"cart_id":    "3",
		"item_count": "0",
	}

	po, err := DecodeMetadata(1, "chk", meta)
	require.NoError(t, err)
	assert.Empty(t, po.Items)
}
