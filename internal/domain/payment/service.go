package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
	"tidewater/internal/core/tx"
	"tidewater/internal/core/types"
	"tidewater/internal/domain/audit"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/events"
	"tidewater/internal/domain/order"
	"tidewater/pkg/logger"
)

// Service records and removes payments. Every write recomputes the order's
// total and outstanding balance in the same transaction.
type Service struct {
	payments Repository
	orders   order.Repository
	txm      tx.Manager
	clock    clock.Clock
	events   events.Publisher
	audit    audit.Recorder
}

func NewService(
	payments Repository,
	orders order.Repository,
	txm tx.Manager,
	clk clock.Clock,
	publisher events.Publisher,
	recorder audit.Recorder,
) *Service {
	return &Service{
		payments: payments,
		orders:   orders,
		txm:      txm,
		clock:    clk,
		events:   publisher,
		audit:    recorder,
	}
}

// RecordInput is a validated payment request.
type RecordInput struct {
	OrderID   id.ID
	Amount    types.Money
	Method    Method
	PaidAt    *time.Time
	Reference string
	Notes     string
}

// Record applies a payment. Amounts above the outstanding balance are rejected
// so the balance never goes negative.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Payment, *order.Order, error) {
	if !in.Amount.IsPositive() {
		return nil, nil, apperror.NewValidation("payment amount must be greater than zero").WithDetail("field", "amount")
	}
	if _, err := ParseMethod(string(in.Method)); err != nil {
		return nil, nil, apperror.NewValidation(err.Error()).WithDetail("field", "method")
	}

	now := s.clock.Now()
	p := &Payment{
		ID:        id.New(),
		OrderID:   in.OrderID,
		Amount:    in.Amount.Round(types.Scale),
		Method:    in.Method,
		PaidAt:    now,
		Reference: strings.TrimSpace(in.Reference),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
	}
	if in.PaidAt != nil {
		p.PaidAt = *in.PaidAt
	}

	var o *order.Order
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.lockOrder(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if o.DeliveryStatus == delivery.StatusCancelled {
			return apperror.NewConflict("cannot record a payment on a cancelled order").
				WithDetail("order_id", o.ID.String())
		}

		paid, err := s.payments.SumByOrder(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}
		outstanding := o.ItemsTotal().Sub(paid)
		if p.Amount.GreaterThan(outstanding) {
			return apperror.NewPaymentExceedsBalance(o.ID.String(), p.Amount, outstanding)
		}

		if err := s.payments.Create(ctx, p); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		if err := o.Recalculate(paid.Add(p.Amount), now); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order balance: %w", err)
		}

		return s.journal(ctx, events.PaymentRecorded, audit.ActionCreate, o, p)
	})
	if err != nil {
		return nil, nil, err
	}

	logger.Info(ctx, "payment recorded",
		"payment_id", p.ID,
		"order_id", o.ID,
		"amount", p.Amount.String(),
		"outstanding_balance", o.OutstandingBalance.String(),
	)
	return p, o, nil
}

// Delete removes a payment and restores the order balance.
func (s *Service) Delete(ctx context.Context, paymentID id.ID) (*order.Order, error) {
	var o *order.Order
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		o, err = s.lockOrder(ctx, p.OrderID)
		if err != nil {
			return err
		}
		if err := s.payments.Delete(ctx, paymentID); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		paid, err := s.payments.SumByOrder(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("sum payments: %w", err)
		}
		if err := o.Recalculate(paid, s.clock.Now()); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order balance: %w", err)
		}
		return s.journal(ctx, events.PaymentDeleted, audit.ActionDelete, o, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment deleted", "payment_id", paymentID, "order_id", o.ID,
		"outstanding_balance", o.OutstandingBalance.String())
	return o, nil
}

// ListByOrder returns the payments applied to an order.
func (s *Service) ListByOrder(ctx context.Context, orderID id.ID) ([]Payment, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.payments.ListByOrder(ctx, orderID)
}

func (s *Service) lockOrder(ctx context.Context, orderID id.ID) (*order.Order, error) {
	o, err := s.orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.orders.ListItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	o.Items = items
	return o, nil
}

func (s *Service) journal(ctx context.Context, eventType string, action audit.Action, o *order.Order, p *Payment) error {
	payload := map[string]any{
		"payment_id":          p.ID,
		"order_id":            o.ID,
		"amount":              p.Amount,
		"method":              p.Method,
		"outstanding_balance": o.OutstandingBalance,
		"payment_status":      o.PaymentStatus,
	}
	if err := s.events.Publish(ctx, events.Event{
		AggregateType: events.AggregateOrder,
		AggregateID:   o.ID,
		Type:          eventType,
		Payload:       payload,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	if err := s.audit.Record(ctx, audit.NewEntry(ctx, "payment", p.ID, action, payload)); err != nil {
		return fmt.Errorf("audit payment: %w", err)
	}
	return nil
}
