package memory

import (
	"cmp"
	"context"
	"slices"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/domain/purchasing"
)

type PurchaseOrderRepo struct{ s *Store }

func (s *Store) PurchaseOrders() *PurchaseOrderRepo { return &PurchaseOrderRepo{s: s} }

var _ purchasing.Repository = (*PurchaseOrderRepo)(nil)

func (r *PurchaseOrderRepo) Create(ctx context.Context, po *purchasing.PurchaseOrder) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.suppliers[po.SupplierID]; !ok {
			return apperror.NewNotFound("supplier", po.SupplierID)
		}
		cp := *po
		cp.Items = nil
		st.purchaseOrders[po.ID] = cp
		return nil
	})
}

func (r *PurchaseOrderRepo) CreateItems(ctx context.Context, items []purchasing.Item) error {
	return r.s.with(ctx, func(st *state) error {
		st.poItems = append(st.poItems, items...)
		return nil
	})
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, poID id.ID) (*purchasing.PurchaseOrder, error) {
	var out purchasing.PurchaseOrder
	err := r.s.with(ctx, func(st *state) error {
		po, ok := st.purchaseOrders[poID]
		if !ok {
			return apperror.NewNotFound("purchase_order", poID)
		}
		out = po
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, poID id.ID) (*purchasing.PurchaseOrder, error) {
	return r.GetByID(ctx, poID)
}

func (r *PurchaseOrderRepo) ListItems(ctx context.Context, poID id.ID) ([]purchasing.Item, error) {
	items := make([]purchasing.Item, 0)
	err := r.s.with(ctx, func(st *state) error {
		for _, it := range st.poItems {
			if it.PurchaseOrderID == poID {
				items = append(items, it)
			}
		}
		return nil
	})
	slices.SortFunc(items, func(a, b purchasing.Item) int { return cmp.Compare(a.LineNo, b.LineNo) })
	return items, err
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, po *purchasing.PurchaseOrder) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.purchaseOrders[po.ID]; !ok {
			return apperror.NewNotFound("purchase_order", po.ID)
		}
		cp := *po
		cp.Items = nil
		st.purchaseOrders[po.ID] = cp
		return nil
	})
}
