package order

import (
	"context"
	"time"

	"tidewater/internal/core/id"
	"tidewater/internal/domain"
	"tidewater/internal/domain/delivery"
)

// Repository persists orders and their items.
type Repository interface {
	// Create inserts the header only.
	Create(ctx context.Context, o *Order) error

	// CreateItems appends line items. Items are never updated.
	CreateItems(ctx context.Context, items []Item) error

	// Update writes totals, statuses, delivery date and notes.
	Update(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetForUpdate locks the order row for the rest of the transaction.
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)

	ListItems(ctx context.Context, orderID id.ID) ([]Item, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[Order], error)
}

// ListFilter narrows order listings. Nil fields are ignored.
type ListFilter struct {
	CustomerID     *id.ID
	DeliveryStatus *delivery.Status
	PaymentStatus  *PaymentStatus
	From           *time.Time
	To             *time.Time
	domain.Page
}
