package delivery

import (
	"context"

	"tidewater/internal/core/id"
)

// Repository persists deliveries. An order has at most one delivery; Create
// returns apperror CONFLICT when the order already has one.
type Repository interface {
	Create(ctx context.Context, d *Delivery) error
	GetByID(ctx context.Context, deliveryID id.ID) (*Delivery, error)
	// GetForUpdate locks the delivery row for the rest of the transaction.
	GetForUpdate(ctx context.Context, deliveryID id.ID) (*Delivery, error)
	// GetByOrder returns apperror NOT_FOUND when the order has no delivery.
	GetByOrder(ctx context.Context, orderID id.ID) (*Delivery, error)
	Update(ctx context.Context, d *Delivery) error
}
