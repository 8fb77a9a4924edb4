// Package fulfillment coordinates the inventory ledger, the order aggregate and
// the delivery scheduler. Order creation and cancellation each run as a single
// unit of work: either every row they touch changes, or none does.
package fulfillment

import (
	"context"
	"fmt"
	"slices"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
	"tidewater/internal/core/tx"
	"tidewater/internal/core/types"
	"tidewater/internal/domain"
	"tidewater/internal/domain/audit"
	"tidewater/internal/domain/catalog"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/events"
	"tidewater/internal/domain/inventory"
	"tidewater/internal/domain/order"
	"tidewater/pkg/logger"
)

// Deps groups the collaborators of Service.
type Deps struct {
	Customers  catalog.CustomerRepository
	Orders     order.Repository
	Deliveries delivery.Repository
	Ledger     *inventory.Ledger
	TxManager  tx.Manager
	Clock      clock.Clock
	Events     events.Publisher
	Audit      audit.Log

	// Policy defaults to delivery.DefaultPolicy when zero.
	Policy delivery.Policy
}

type Service struct {
	customers  catalog.CustomerRepository
	orders     order.Repository
	deliveries delivery.Repository
	ledger     *inventory.Ledger
	txm        tx.Manager
	clock      clock.Clock
	events     events.Publisher
	audit      audit.Log
	policy     delivery.Policy
}

func NewService(d Deps) *Service {
	policy := d.Policy
	if policy == (delivery.Policy{}) {
		policy = delivery.DefaultPolicy()
	}
	return &Service{
		customers:  d.Customers,
		orders:     d.Orders,
		deliveries: d.Deliveries,
		ledger:     d.Ledger,
		txm:        d.TxManager,
		clock:      d.Clock,
		events:     d.Events,
		audit:      d.Audit,
		policy:     policy,
	}
}

// ItemInput is one requested line.
type ItemInput struct {
	ProductID id.ID
	Quantity  types.Quantity
	UnitPrice types.Money
}

// CreateOrderInput is an already validated order request.
type CreateOrderInput struct {
	CustomerID      id.ID
	Type            order.Type
	DeliveryAddress string
	Notes           string
	Items           []ItemInput
}

// CreateOrder places an order: reserves stock for every line in request order,
// writes the items, schedules the delivery and finalizes totals. Any failure,
// including INSUFFICIENT_STOCK on a later line, rolls back everything.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*order.Order, error) {
	typ, err := validateCreate(in)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var o *order.Order
	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.customers.GetCustomer(ctx, in.CustomerID)
		if err != nil {
			return err
		}

		o = order.New(customer.ID, typ, order.ResolveAddress(in.DeliveryAddress, customer.Address), in.Notes, now)
		if err := s.orders.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		cause := inventory.Cause{
			Reason:    fmt.Sprintf("Stock deducted for order #%s", o.ID),
			Reference: order.Reference(o.ID),
		}
		for _, it := range in.Items {
			if err := s.ledger.Reserve(ctx, it.ProductID, it.Quantity, cause); err != nil {
				return err
			}
			o.AddItem(it.ProductID, it.Quantity, it.UnitPrice)
		}
		if err := s.orders.CreateItems(ctx, o.Items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		at, status := s.policy.Schedule(now)
		d := delivery.New(o.ID, at, status, o.DeliveryAddress, delivery.AutoCreatedNote, now)
		if err := s.deliveries.Create(ctx, d); err != nil {
			return fmt.Errorf("create delivery: %w", err)
		}
		o.Delivery = d

		o.ApplySchedule(at, status, now)
		if err := o.Recalculate(types.Money{}, now); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("finalize order: %w", err)
		}

		return s.journal(ctx, events.OrderCreated, audit.ActionCreate, o)
	})
	if err != nil {
		if apperror.IsInsufficientStock(err) {
			logger.Warn(ctx, "order rejected", "customer_id", in.CustomerID, "error", err)
		}
		return nil, err
	}

	logger.Info(ctx, "order created",
		"order_id", o.ID,
		"customer_id", o.CustomerID,
		"items", len(o.Items),
		"total_amount", o.TotalAmount.String(),
		"delivery_status", o.DeliveryStatus,
		"delivery_date", o.DeliveryDate,
	)
	return o, nil
}

func validateCreate(in CreateOrderInput) (order.Type, error) {
	if id.IsNil(in.CustomerID) {
		return "", apperror.NewValidation("customer is required").WithDetail("field", "customerId")
	}
	typ, err := order.ParseType(string(in.Type))
	if err != nil {
		return "", apperror.NewValidation(err.Error()).WithDetail("field", "orderType")
	}
	if len(in.Items) == 0 {
		return "", apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}
	for i, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return "", apperror.NewValidation("quantity must be greater than zero").
				WithDetail("field", "items").WithDetail("lineNo", i+1)
		}
		if it.UnitPrice.IsNegative() {
			return "", apperror.NewValidation("unit price must not be negative").
				WithDetail("field", "items").WithDetail("lineNo", i+1)
		}
	}
	return typ, nil
}

// CancelOrder restores the stock of every item, fails the delivery and marks
// the order cancelled. Delivered and cancelled orders are rejected with CONFLICT.
func (s *Service) CancelOrder(ctx context.Context, orderID id.ID) (*order.Order, error) {
	var o *order.Order
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.EnsureCancellable(); err != nil {
			return err
		}

		o.Items, err = s.orders.ListItems(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}

		cause := inventory.Cause{
			Reason:    fmt.Sprintf("Stock restored for cancelled order #%s", o.ID),
			Reference: order.Reference(o.ID),
		}
		for _, it := range o.Items {
			if err := s.ledger.Restock(ctx, it.ProductID, it.Quantity, cause); err != nil {
				return fmt.Errorf("restock %s: %w", it.ProductID, err)
			}
		}

		now := s.clock.Now()
		d, err := s.deliveries.GetByOrder(ctx, orderID)
		switch {
		case err == nil:
			if err := d.MarkFailed(now); err != nil {
				return err
			}
			d.AppendNote("Order cancelled")
			if err := s.deliveries.Update(ctx, d); err != nil {
				return fmt.Errorf("fail delivery: %w", err)
			}
			o.Delivery = d
		case !apperror.IsNotFound(err):
			return fmt.Errorf("load delivery: %w", err)
		}

		if err := o.Cancel(now); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("cancel order: %w", err)
		}

		return s.journal(ctx, events.OrderCancelled, audit.ActionCancel, o)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order cancelled", "order_id", o.ID, "items_restocked", len(o.Items))
	return o, nil
}

// GetOrder returns the order with its items and delivery.
func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (*order.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Items, err = s.orders.ListItems(ctx, orderID); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	d, err := s.deliveries.GetByOrder(ctx, orderID)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("load delivery: %w", err)
	}
	o.Delivery = d
	return o, nil
}

// ListOrders returns order headers; items are loaded by GetOrder.
func (s *Service) ListOrders(ctx context.Context, filter order.ListFilter) (domain.ListResult[order.Order], error) {
	filter.Page = filter.Page.Normalize()
	return s.orders.List(ctx, filter)
}

// OrderHistory returns the audit trail of an order and its delivery, newest first.
func (s *Service) OrderHistory(ctx context.Context, orderID id.ID, limit int) ([]audit.Record, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	records, err := s.audit.History(ctx, "order", orderID, limit)
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}

	d, err := s.deliveries.GetByOrder(ctx, orderID)
	switch {
	case apperror.IsNotFound(err):
		return records, nil
	case err != nil:
		return nil, fmt.Errorf("load delivery: %w", err)
	}
	deliveryRecords, err := s.audit.History(ctx, "delivery", d.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("delivery history: %w", err)
	}

	records = append(records, deliveryRecords...)
	slices.SortStableFunc(records, func(a, b audit.Record) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (s *Service) journal(ctx context.Context, eventType string, action audit.Action, o *order.Order) error {
	if err := s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateOrder,
		AggregateID:   o.ID,
		Type:          eventType,
		Payload:       o,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	if err := s.audit.Record(ctx, audit.NewEntry(ctx, "order", o.ID, action, o)); err != nil {
		return fmt.Errorf("audit order: %w", err)
	}
	return nil
}
