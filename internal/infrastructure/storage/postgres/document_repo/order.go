// Package document_repo stores the order documents: orders with their line
// items, deliveries, payments and purchase orders.
package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"tidewater/internal/core/id"
	"tidewater/internal/domain"
	"tidewater/internal/domain/order"
	"tidewater/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "orders"
	orderItemsTable = "order_items"
)

var _ order.Repository = (*OrderRepo)(nil)

type OrderRepo struct {
	orders *postgres.Table[order.Order]
	items  *postgres.Table[order.Item]
}

func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		orders: postgres.NewTable[order.Order](txm, ordersTable, "id", "order"),
		items:  postgres.NewTable[order.Item](txm, orderItemsTable, "id", "order item"),
	}
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.orders.Insert(ctx, o)
}

func (r *OrderRepo) CreateItems(ctx context.Context, items []order.Item) error {
	return r.items.InsertMany(ctx, items)
}

func (r *OrderRepo) Update(ctx context.Context, o *order.Order) error {
	return r.orders.Update(ctx, o, "customer_id", "order_type", "created_at")
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.orders.Get(ctx, orderID)
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.orders.GetForUpdate(ctx, orderID)
}

func (r *OrderRepo) ListItems(ctx context.Context, orderID id.ID) ([]order.Item, error) {
	return r.items.List(ctx, r.items.Select().
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no"))
}

func (r *OrderRepo) List(ctx context.Context, f order.ListFilter) (domain.ListResult[order.Order], error) {
	return r.orders.Page(ctx, orderFilter(f), []string{"created_at DESC", "id DESC"}, f.Page)
}

func orderFilter(f order.ListFilter) squirrel.And {
	where := squirrel.And{}
	if f.CustomerID != nil {
		where = append(where, squirrel.Eq{"customer_id": *f.CustomerID})
	}
	if f.DeliveryStatus != nil {
		where = append(where, squirrel.Eq{"delivery_status": *f.DeliveryStatus})
	}
	if f.PaymentStatus != nil {
		where = append(where, squirrel.Eq{"payment_status": *f.PaymentStatus})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.Lt{"created_at": *f.To})
	}
	return where
}
