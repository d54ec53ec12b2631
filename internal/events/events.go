// Package events defines the Kafka envelope and payloads this service
// publishes.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderPaid        = "OrderPaid"
	EventInventoryUpdated = "InventoryUpdated"
)

const (
	TopicOrderPaid        = "order.paid"
	TopicInventoryUpdated = "inventory.updated"
)

const producerName = "bazar-api"

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type ItemQty struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

type OrderPaidPayload struct {
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      int64     `json:"user_id"`
	Items       []ItemQty `json:"items"`
	TotalCents  int64     `json:"total_cents"`
}

type InventoryUpdatedPayload struct {
	OrderID int64     `json:"order_id"`
	Items   []ItemQty `json:"items"`
}

// NewEnvelope wraps a payload; correlationID is normally the order id
// so all events for one order keep their relative order per partition.
func NewEnvelope(eventType, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}
