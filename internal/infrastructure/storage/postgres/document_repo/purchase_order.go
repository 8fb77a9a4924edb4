package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"tidewater/internal/core/id"
	"tidewater/internal/domain/purchasing"
	"tidewater/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "purchase_orders"
	purchaseOrderItemsTable = "purchase_order_items"
)

var _ purchasing.Repository = (*PurchaseOrderRepo)(nil)

type PurchaseOrderRepo struct {
	orders *postgres.Table[purchasing.PurchaseOrder]
	items  *postgres.Table[purchasing.Item]
}

func NewPurchaseOrderRepo(txm *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{
		orders: postgres.NewTable[purchasing.PurchaseOrder](txm, purchaseOrdersTable, "id", "purchase order"),
		items:  postgres.NewTable[purchasing.Item](txm, purchaseOrderItemsTable, "id", "purchase order item"),
	}
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, po *purchasing.PurchaseOrder) error {
	return r.orders.Insert(ctx, po)
}

func (r *PurchaseOrderRepo) CreateItems(ctx context.Context, items []purchasing.Item) error {
	return r.items.InsertMany(ctx, items)
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, poID id.ID) (*purchasing.PurchaseOrder, error) {
	return r.orders.Get(ctx, poID)
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, poID id.ID) (*purchasing.PurchaseOrder, error) {
	return r.orders.GetForUpdate(ctx, poID)
}

func (r *PurchaseOrderRepo) ListItems(ctx context.Context, poID id.ID) ([]purchasing.Item, error) {
	return r.items.List(ctx, r.items.Select().
		Where(squirrel.Eq{"purchase_order_id": poID}).
		OrderBy("line_no"))
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, po *purchasing.PurchaseOrder) error {
	return r.orders.Update(ctx, po, "supplier_id", "created_at")
}
