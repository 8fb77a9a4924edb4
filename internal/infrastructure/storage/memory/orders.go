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
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/order"
	"tidewater/internal/domain/payment"
)

type OrderRepo struct{ s *Store }

func (s *Store) Orders() *OrderRepo { return &OrderRepo{s: s} }

var _ order.Repository = (*OrderRepo)(nil)

// stored strips the loaded associations; they live in their own collections.
func stored(o *order.Order) order.Order {
	cp := *o
	cp.Items = nil
	cp.Delivery = nil
	return cp
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.customers[o.CustomerID]; !ok {
			return apperror.NewNotFound("customer", o.CustomerID)
		}
		st.orders[o.ID] = stored(o)
		return nil
	})
}

func (r *OrderRepo) CreateItems(ctx context.Context, items []order.Item) error {
	return r.s.with(ctx, func(st *state) error {
		for _, it := range items {
			if _, ok := st.orders[it.OrderID]; !ok {
				return apperror.NewNotFound("order", it.OrderID)
			}
			if _, ok := st.products[it.ProductID]; !ok {
				return apperror.NewNotFound("product", it.ProductID)
			}
		}
		st.orderItems = append(st.orderItems, items...)
		return nil
	})
}

func (r *OrderRepo) Update(ctx context.Context, o *order.Order) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.orders[o.ID]; !ok {
			return apperror.NewNotFound("order", o.ID)
		}
		st.orders[o.ID] = stored(o)
		return nil
	})
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	var out order.Order
	err := r.s.with(ctx, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return apperror.NewNotFound("order", orderID)
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *OrderRepo) ListItems(ctx context.Context, orderID id.ID) ([]order.Item, error) {
	items := make([]order.Item, 0)
	err := r.s.with(ctx, func(st *state) error {
		for _, it := range st.orderItems {
			if it.OrderID == orderID {
				items = append(items, it)
			}
		}
		return nil
	})
	slices.SortFunc(items, func(a, b order.Item) int { return cmp.Compare(a.LineNo, b.LineNo) })
	return items, err
}

func (r *OrderRepo) List(ctx context.Context, f order.ListFilter) (domain.ListResult[order.Order], error) {
	var matched []order.Order
	_ = r.s.with(ctx, func(st *state) error {
		for _, o := range st.orders {
			if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
				continue
			}
			if f.DeliveryStatus != nil && o.DeliveryStatus != *f.DeliveryStatus {
				continue
			}
			if f.PaymentStatus != nil && o.PaymentStatus != *f.PaymentStatus {
				continue
			}
			if f.From != nil && o.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && !o.CreatedAt.Before(*f.To) {
				continue
			}
			matched = append(matched, o)
		}
		return nil
	})
	slices.SortFunc(matched, func(a, b order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.String(), a.ID.String())
	})
	return paginate(matched, f.Page), nil
}

type DeliveryRepo struct{ s *Store }

func (s *Store) Deliveries() *DeliveryRepo { return &DeliveryRepo{s: s} }

var _ delivery.Repository = (*DeliveryRepo)(nil)

func (r *DeliveryRepo) Create(ctx context.Context, d *delivery.Delivery) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.orders[d.OrderID]; !ok {
			return apperror.NewNotFound("order", d.OrderID)
		}
		for _, existing := range st.deliveries {
			if existing.OrderID == d.OrderID {
				return apperror.NewConflict("delivery already exists for this order").
					WithDetail("order_id", d.OrderID.String())
			}
		}
		st.deliveries[d.ID] = *d
		return nil
	})
}

func (r *DeliveryRepo) GetByID(ctx context.Context, deliveryID id.ID) (*delivery.Delivery, error) {
	var out delivery.Delivery
	err := r.s.with(ctx, func(st *state) error {
		d, ok := st.deliveries[deliveryID]
		if !ok {
			return apperror.NewNotFound("delivery", deliveryID)
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *DeliveryRepo) GetForUpdate(ctx context.Context, deliveryID id.ID) (*delivery.Delivery, error) {
	return r.GetByID(ctx, deliveryID)
}

func (r *DeliveryRepo) GetByOrder(ctx context.Context, orderID id.ID) (*delivery.Delivery, error) {
	var out *delivery.Delivery
	_ = r.s.with(ctx, func(st *state) error {
		for _, d := range st.deliveries {
			if d.OrderID == orderID {
				out = &d
				return nil
			}
		}
		return nil
	})
	if out == nil {
		return nil, apperror.NewNotFound("delivery", orderID)
	}
	return out, nil
}

func (r *DeliveryRepo) Update(ctx context.Context, d *delivery.Delivery) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.deliveries[d.ID]; !ok {
			return apperror.NewNotFound("delivery", d.ID)
		}
		st.deliveries[d.ID] = *d
		return nil
	})
}

type PaymentRepo struct{ s *Store }

func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{s: s} }

var _ payment.Repository = (*PaymentRepo)(nil)

func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.orders[p.OrderID]; !ok {
			return apperror.NewNotFound("order", p.OrderID)
		}
		st.payments[p.ID] = *p
		return nil
	})
}

func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*payment.Payment, error) {
	var out payment.Payment
	err := r.s.with(ctx, func(st *state) error {
		p, ok := st.payments[paymentID]
		if !ok {
			return apperror.NewNotFound("payment", paymentID)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PaymentRepo) Delete(ctx context.Context, paymentID id.ID) error {
	return r.s.with(ctx, func(st *state) error {
		if _, ok := st.payments[paymentID]; !ok {
			return apperror.NewNotFound("payment", paymentID)
		}
		delete(st.payments, paymentID)
		return nil
	})
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]payment.Payment, error) {
	out := make([]payment.Payment, 0)
	err := r.s.with(ctx, func(st *state) error {
		for _, p := range st.payments {
			if p.OrderID == orderID {
				out = append(out, p)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b payment.Payment) int {
		if c := a.PaidAt.Compare(b.PaidAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, err
}

func (r *PaymentRepo) SumByOrder(ctx context.Context, orderID id.ID) (types.Money, error) {
	sum := decimal.Zero
	err := r.s.with(ctx, func(st *state) error {
		for _, p := range st.payments {
			if p.OrderID == orderID {
				sum = sum.Add(p.Amount)
			}
		}
		return nil
	})
	return sum, err
}
