package fulfillment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/domain/audit"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/events"
	"tidewater/internal/domain/order"
	"tidewater/pkg/logger"
)

// UpdateDeliveryInput moves a delivery to a new status.
type UpdateDeliveryInput struct {
	Status delivery.Status
	Notes  string
}

// UpdateDeliveryStatus advances a delivery and mirrors the change onto its order.
//
// A failed attempt puts the order back to pending (awaiting redispatch) while
// the delivery records the failure; moving the delivery from failed to pending
// reschedules it from the current time. Cancellation goes through CancelOrder
// so stock is restored.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, deliveryID id.ID, in UpdateDeliveryInput) (*delivery.Delivery, error) {
	if !in.Status.Valid() {
		return nil, apperror.NewValidation("unknown delivery status").WithDetail("field", "status")
	}
	if in.Status == delivery.StatusCancelled {
		return nil, apperror.NewValidation("deliveries are cancelled by cancelling their order").
			WithDetail("field", "status")
	}

	var d *delivery.Delivery
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var (
			o   *order.Order
			err error
		)
		d, o, err = s.lockDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		from := d.Status
		if err := d.TransitionTo(in.Status, now); err != nil {
			return err
		}
		d.AppendNote(in.Notes)

		switch in.Status {
		case delivery.StatusFailed:
			o.SetDeliveryStatus(delivery.StatusPending, now)
		case delivery.StatusPending:
			at, _ := s.policy.Schedule(now)
			d.ScheduledAt = at
			o.ApplySchedule(at, delivery.StatusPending, now)
		default:
			o.SetDeliveryStatus(in.Status, now)
		}

		if err := s.deliveries.Update(ctx, d); err != nil {
			return fmt.Errorf("update delivery: %w", err)
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order delivery status: %w", err)
		}

		payload := map[string]any{
			"delivery_id":  d.ID,
			"order_id":     o.ID,
			"from":         from,
			"to":           d.Status,
			"order_status": o.DeliveryStatus,
			"scheduled_at": d.ScheduledAt,
			"delivered_at": d.DeliveredAt,
		}
		if err := s.events.Publish(ctx, events.Event{
			AggregateType: events.AggregateDelivery,
			AggregateID:   d.ID,
			Type:          events.DeliveryStatusChanged,
			Payload:       payload,
		}); err != nil {
			return fmt.Errorf("publish delivery status: %w", err)
		}
		return s.audit.Record(ctx, audit.NewEntry(ctx, "delivery", d.ID, audit.ActionUpdate, payload))
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "delivery status updated", "delivery_id", d.ID, "order_id", d.OrderID, "status", d.Status)
	return d, nil
}

// AssignDelivery sets the employee responsible for a delivery.
func (s *Service) AssignDelivery(ctx context.Context, deliveryID, employeeID id.ID) (*delivery.Delivery, error) {
	if id.IsNil(employeeID) {
		return nil, apperror.NewValidation("employee is required").WithDetail("field", "employeeId")
	}

	var d *delivery.Delivery
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		d, _, err = s.lockDelivery(ctx, deliveryID)
		if err != nil {
			return err
		}
		if d.Status.Terminal() {
			return apperror.NewConflict("delivery is already closed").
				WithDetail("delivery_id", d.ID.String()).
				WithDetail("status", string(d.Status))
		}
		d.EmployeeID = &employeeID
		d.UpdatedAt = s.clock.Now()
		if err := s.deliveries.Update(ctx, d); err != nil {
			return fmt.Errorf("assign delivery: %w", err)
		}
		return s.audit.Record(ctx, audit.NewEntry(ctx, "delivery", d.ID, audit.ActionUpdate,
			map[string]any{"employee_id": employeeID}))
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "delivery assigned", "delivery_id", d.ID, "employee_id", employeeID)
	return d, nil
}

// CreateDeliveryInput is used for orders that have no delivery yet.
type CreateDeliveryInput struct {
	ScheduledAt *time.Time
	Address     string
	Notes       string
}

// CreateDelivery attaches a delivery to an order that lacks one. Orders placed
// through CreateOrder already have a delivery, so this returns CONFLICT for them.
func (s *Service) CreateDelivery(ctx context.Context, orderID id.ID, in CreateDeliveryInput) (*delivery.Delivery, error) {
	var d *delivery.Delivery
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.DeliveryStatus.Terminal() {
			return apperror.NewConflict("order is closed").
				WithDetail("order_id", o.ID.String()).
				WithDetail("delivery_status", string(o.DeliveryStatus))
		}

		existing, err := s.deliveries.GetByOrder(ctx, orderID)
		if err == nil {
			return apperror.NewConflict("delivery already exists for this order").
				WithDetail("order_id", o.ID.String()).
				WithDetail("delivery_id", existing.ID.String())
		}
		if !apperror.IsNotFound(err) {
			return fmt.Errorf("load delivery: %w", err)
		}

		now := s.clock.Now()
		at, status := s.policy.Schedule(now)
		if in.ScheduledAt != nil {
			at, status = *in.ScheduledAt, delivery.StatusPending
		}
		address := o.DeliveryAddress
		if a := strings.TrimSpace(in.Address); a != "" {
			address = a
		}

		d = delivery.New(o.ID, at, status, address, in.Notes, now)
		if err := s.deliveries.Create(ctx, d); err != nil {
			return fmt.Errorf("create delivery: %w", err)
		}
		o.ApplySchedule(at, status, now)
		if err := s.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order schedule: %w", err)
		}
		return s.audit.Record(ctx, audit.NewEntry(ctx, "delivery", d.ID, audit.ActionCreate, d))
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "delivery created", "delivery_id", d.ID, "order_id", orderID)
	return d, nil
}

// lockDelivery locks the order row, then the delivery row. CancelOrder and
// CreateDelivery take the same two locks in the same order.
func (s *Service) lockDelivery(ctx context.Context, deliveryID id.ID) (*delivery.Delivery, *order.Order, error) {
	d, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, nil, err
	}
	o, err := s.orders.GetForUpdate(ctx, d.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("load order %s: %w", d.OrderID, err)
	}
	if d, err = s.deliveries.GetForUpdate(ctx, deliveryID); err != nil {
		return nil, nil, err
	}
	if o.DeliveryStatus == delivery.StatusCancelled {
		return nil, nil, apperror.NewConflict("order is cancelled").
			WithDetail("order_id", o.ID.String()).
			WithDetail("delivery_id", d.ID.String())
	}
	return d, o, nil
}
