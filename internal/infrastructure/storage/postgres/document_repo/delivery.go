package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/infrastructure/storage/postgres"
)

const deliveriesTable = "deliveries"

var _ delivery.Repository = (*DeliveryRepo)(nil)

type DeliveryRepo struct {
	deliveries *postgres.Table[delivery.Delivery]
}

func NewDeliveryRepo(txm *postgres.TxManager) *DeliveryRepo {
	return &DeliveryRepo{
		deliveries: postgres.NewTable[delivery.Delivery](txm, deliveriesTable, "id", "delivery"),
	}
}

// Create relies on the unique order_id constraint: one delivery per order.
func (r *DeliveryRepo) Create(ctx context.Context, d *delivery.Delivery) error {
	if err := r.deliveries.Insert(ctx, d); err != nil {
		if apperror.IsConflict(err) {
			return apperror.NewConflict(fmt.Sprintf("order %s already has a delivery", d.OrderID))
		}
		return err
	}
	return nil
}

func (r *DeliveryRepo) GetByID(ctx context.Context, deliveryID id.ID) (*delivery.Delivery, error) {
	return r.deliveries.Get(ctx, deliveryID)
}

func (r *DeliveryRepo) GetForUpdate(ctx context.Context, deliveryID id.ID) (*delivery.Delivery, error) {
	return r.deliveries.GetForUpdate(ctx, deliveryID)
}

func (r *DeliveryRepo) GetByOrder(ctx context.Context, orderID id.ID) (*delivery.Delivery, error) {
	return r.deliveries.GetWhere(ctx, r.deliveries.Select().Where(squirrel.Eq{"order_id": orderID}), orderID)
}

func (r *DeliveryRepo) Update(ctx context.Context, d *delivery.Delivery) error {
	return r.deliveries.Update(ctx, d, "order_id", "created_at")
}
