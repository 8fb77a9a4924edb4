// Package events defines the domain events written to the transactional outbox.
package events

import (
	"context"

	"tidewater/internal/core/id"
)

// Event types
const (
	OrderCreated          = "order.created"
	OrderCancelled        = "order.cancelled"
	DeliveryStatusChanged = "delivery.status_changed"
	PaymentRecorded       = "payment.recorded"
	PaymentDeleted        = "payment.deleted"
	PurchaseOrderReceived = "purchase_order.received"
)

// Aggregate types
const (
	AggregateOrder         = "order"
	AggregateDelivery      = "delivery"
	AggregatePurchaseOrder = "purchase_order"
)

// Event is published inside the transaction that caused it, so it exists if
// and only if the change committed.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	Type          string
	Payload       any
}

// Publisher must be called with a transactional ctx.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
