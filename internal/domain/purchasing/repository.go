package purchasing

import (
	"context"

	"tidewater/internal/core/id"
)

type Repository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	CreateItems(ctx context.Context, items []Item) error
	GetByID(ctx context.Context, poID id.ID) (*PurchaseOrder, error)
	// GetForUpdate locks the purchase order so it cannot be received twice.
	GetForUpdate(ctx context.Context, poID id.ID) (*PurchaseOrder, error)
	ListItems(ctx context.Context, poID id.ID) ([]Item, error)
	Update(ctx context.Context, po *PurchaseOrder) error
}
