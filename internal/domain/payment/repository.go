package payment

import (
	"context"

	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
)

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)
	Delete(ctx context.Context, paymentID id.ID) error
	ListByOrder(ctx context.Context, orderID id.ID) ([]Payment, error)
	// SumByOrder returns zero for orders without payments.
	SumByOrder(ctx context.Context, orderID id.ID) (types.Money, error)
}
