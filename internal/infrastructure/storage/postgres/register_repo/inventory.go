// Package register_repo stores the inventory register: one balance row per
// product plus the append-only movement log.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
	"tidewater/internal/domain"
	"tidewater/internal/domain/inventory"
	"tidewater/internal/infrastructure/storage/postgres"
)

const (
	inventoryTable = "inventory"
	movementsTable = "stock_movements"
)

var _ inventory.Repository = (*InventoryRepo)(nil)

type InventoryRepo struct {
	txm       *postgres.TxManager
	balances  *postgres.Table[inventory.Inventory]
	movements *postgres.Table[inventory.Movement]
}

func NewInventoryRepo(txm *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txm:       txm,
		balances:  postgres.NewTable[inventory.Inventory](txm, inventoryTable, "product_id", "inventory"),
		movements: postgres.NewTable[inventory.Movement](txm, movementsTable, "id", "stock movement"),
	}
}

func (r *InventoryRepo) Create(ctx context.Context, inv *inventory.Inventory) error {
	return r.balances.Insert(ctx, inv)
}

func (r *InventoryRepo) Get(ctx context.Context, productID id.ID) (*inventory.Inventory, error) {
	return r.balances.Get(ctx, productID)
}

// GetForUpdate takes the row lock that serializes reservations on a product.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, productID id.ID) (*inventory.Inventory, error) {
	return r.balances.GetForUpdate(ctx, productID)
}

func (r *InventoryRepo) Save(ctx context.Context, inv *inventory.Inventory) error {
	return r.balances.Update(ctx, inv)
}

func (r *InventoryRepo) AppendMovement(ctx context.Context, m *inventory.Movement) error {
	return r.movements.Insert(ctx, m)
}

func (r *InventoryRepo) ListMovements(ctx context.Context, f inventory.MovementFilter) (domain.ListResult[inventory.Movement], error) {
	return r.movements.Page(ctx, movementFilter(f), []string{"created_at DESC", "id DESC"}, f.Page)
}

func movementFilter(f inventory.MovementFilter) squirrel.And {
	where := squirrel.And{}
	if f.ProductID != nil {
		where = append(where, squirrel.Eq{"product_id": *f.ProductID})
	}
	if f.Type != nil {
		where = append(where, squirrel.Eq{"movement_type": *f.Type})
	}
	if f.Reference != "" {
		where = append(where, squirrel.Eq{"reference": f.Reference})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.Lt{"created_at": *f.To})
	}
	return where
}

func (r *InventoryRepo) SumMovements(ctx context.Context, productID id.ID) (types.Quantity, error) {
	query, args, err := sumMovementsQuery(productID).ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build movement sum: %w", err)
	}
	var sum decimal.Decimal
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		return decimal.Zero, postgres.TranslateError(fmt.Errorf("sum movements: %w", err))
	}
	return sum, nil
}

func sumMovementsQuery(productID id.ID) squirrel.SelectBuilder {
	return postgres.Builder().
		Select("COALESCE(SUM(CASE movement_type WHEN 'stock_in' THEN quantity ELSE -quantity END), 0)").
		From(movementsTable).
		Where(squirrel.Eq{"product_id": productID})
}

func (r *InventoryRepo) ListLowStock(ctx context.Context, page domain.Page) (domain.ListResult[inventory.Inventory], error) {
	return r.balances.Page(ctx, squirrel.Expr("quantity_on_hand <= reorder_point"),
		[]string{"quantity_on_hand ASC", "product_id ASC"}, page)
}
