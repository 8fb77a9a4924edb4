package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
	"tidewater/internal/domain"
	"tidewater/internal/domain/inventory"
)

type InventoryRepo struct{ s *Store }

func (s *Store) Inventory() *InventoryRepo { return &InventoryRepo{s: s} }

var _ inventory.Repository = (*InventoryRepo)(nil)

func (r *InventoryRepo) Create(ctx context.Context, inv *inventory.Inventory) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.products[inv.ProductID]; !ok {
			return apperror.NewNotFound("product", inv.ProductID)
		}
		if _, ok := st.inventory[inv.ProductID]; ok {
			return apperror.NewConflict("inventory already exists for product").
				WithDetail("product_id", inv.ProductID.String())
		}
		st.inventory[inv.ProductID] = *inv
		return nil
	})
}

func (r *InventoryRepo) Get(ctx context.Context, productID id.ID) (*inventory.Inventory, error) {
	var out inventory.Inventory
	err := r.s.with(ctx, func(st *state) error {
		inv, ok := st.inventory[productID]
		if !ok {
			return apperror.NewNotFound("inventory", productID)
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate needs no extra locking: transactions are serialized by the store.
func (r *InventoryRepo) GetForUpdate(ctx context.Context, productID id.ID) (*inventory.Inventory, error) {
	return r.Get(ctx, productID)
}

func (r *InventoryRepo) Save(ctx context.Context, inv *inventory.Inventory) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.inventory[inv.ProductID]; !ok {
			return apperror.NewNotFound("inventory", inv.ProductID)
		}
		st.inventory[inv.ProductID] = *inv
		return nil
	})
}

func (r *InventoryRepo) AppendMovement(ctx context.Context, m *inventory.Movement) error {
	return r.s.with(ctx, func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

func (r *InventoryRepo) ListMovements(ctx context.Context, f inventory.MovementFilter) (domain.ListResult[inventory.Movement], error) {
	var matched []inventory.Movement
	_ = r.s.with(ctx, func(st *state) error {
		for _, m := range st.movements {
			if f.ProductID != nil && m.ProductID != *f.ProductID {
				continue
			}
			if f.Type != nil && m.Type != *f.Type {
				continue
			}
			if f.Reference != "" && m.Reference != f.Reference {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !m.CreatedAt.Before(*f.To) {
				continue
			}
			matched = append(matched, m)
		}
		return nil
	})

	// newest first; ids are time-ordered so they break ties
	slices.SortStableFunc(matched, func(a, b inventory.Movement) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.String(), a.ID.String())
	})
	return paginate(matched, f.Page), nil
}

func (r *InventoryRepo) SumMovements(ctx context.Context, productID id.ID) (types.Quantity, error) {
	sum := decimal.Zero
	err := r.s.with(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.ProductID == productID {
				sum = sum.Add(m.Signed())
			}
		}
		return nil
	})
	return sum, err
}

func (r *InventoryRepo) ListLowStock(ctx context.Context, page domain.Page) (domain.ListResult[inventory.Inventory], error) {
	var low []inventory.Inventory
	_ = r.s.with(ctx, func(st *state) error {
		for _, inv := range st.inventory {
			if inv.QuantityOnHand.LessThanOrEqual(inv.ReorderPoint) {
				low = append(low, inv)
			}
		}
		return nil
	})
	slices.SortFunc(low, func(a, b inventory.Inventory) int {
		if c := a.QuantityOnHand.Cmp(b.QuantityOnHand); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID.String(), b.ProductID.String())
	})
	return paginate(low, page), nil
}

func paginate[T any](items []T, page domain.Page) domain.ListResult[T] {
	page = page.Normalize()
	total := int64(len(items))
	start := min(page.Offset, len(items))
	end := min(start+page.Limit, len(items))
	return domain.NewListResult(slices.Clone(items[start:end]), total, page)
}
