package inventory

import (
	"context"
	"time"

	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
	"tidewater/internal/domain"
)

// Repository persists inventory rows and the movement log.
// All methods use the transaction carried in ctx when there is one.
type Repository interface {
	// Create inserts the inventory row for a new product.
	Create(ctx context.Context, inv *Inventory) error

	// Get returns the row or apperror NotFound.
	Get(ctx context.Context, productID id.ID) (*Inventory, error)

	// GetForUpdate returns the row locked until the surrounding transaction ends.
	// Concurrent reservations on the same product serialize here.
	GetForUpdate(ctx context.Context, productID id.ID) (*Inventory, error)

	// Save writes quantity, status, reorder point and timestamps.
	Save(ctx context.Context, inv *Inventory) error

	// AppendMovement inserts one movement. Movements are never updated or deleted.
	AppendMovement(ctx context.Context, m *Movement) error

	ListMovements(ctx context.Context, filter MovementFilter) (domain.ListResult[Movement], error)

	// SumMovements returns the signed sum of all movements for a product.
	SumMovements(ctx context.Context, productID id.ID) (types.Quantity, error)

	// ListLowStock returns rows whose quantity is at or below the reorder point.
	ListLowStock(ctx context.Context, page domain.Page) (domain.ListResult[Inventory], error)
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	ProductID *id.ID
	Type      *MovementType
	Reference string
	From      *time.Time
	To        *time.Time
	domain.Page
}
