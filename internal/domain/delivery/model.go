// Package delivery models the one delivery each order owns, its state machine
// and the cutoff rule that schedules it.
package delivery

import (
	"strings"
	"time"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
)

// AutoCreatedNote is stored on deliveries created together with their order.
const AutoCreatedNote = "Auto-created when order was placed"

// Delivery is the has-one delivery of an order.
type Delivery struct {
	ID          id.ID      `db:"id" json:"id"`
	OrderID     id.ID      `db:"order_id" json:"orderId"`
	EmployeeID  *id.ID     `db:"employee_id" json:"employeeId,omitempty"`
	Status      Status     `db:"status" json:"status"`
	ScheduledAt time.Time  `db:"scheduled_at" json:"scheduledAt"`
	DeliveredAt *time.Time `db:"delivered_at" json:"deliveredAt,omitempty"`
	Address     string     `db:"address" json:"address"`
	Notes       string     `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// New creates a delivery for an order using the scheduled slot.
func New(orderID id.ID, scheduledAt time.Time, status Status, address, notes string, now time.Time) *Delivery {
	return &Delivery{
		ID:          id.New(),
		OrderID:     orderID,
		Status:      status,
		ScheduledAt: scheduledAt,
		Address:     address,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TransitionTo moves the delivery through the state machine.
// Delivered stamps DeliveredAt.
func (d *Delivery) TransitionTo(next Status, now time.Time) error {
	if !d.Status.CanTransitionTo(next) {
		return apperror.NewConflict("delivery status transition not allowed").
			WithDetail("delivery_id", d.ID.String()).
			WithDetail("from", string(d.Status)).
			WithDetail("to", string(next))
	}
	d.Status = next
	d.UpdatedAt = now
	if next == StatusDelivered {
		d.DeliveredAt = &now
	}
	return nil
}

// MarkFailed is used by order cancellation; it is a no-op for deliveries that
// already failed.
func (d *Delivery) MarkFailed(now time.Time) error {
	if d.Status == StatusFailed {
		return nil
	}
	return d.TransitionTo(StatusFailed, now)
}

// AppendNote adds a line to the delivery notes.
func (d *Delivery) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if d.Notes == "" {
		d.Notes = note
		return
	}
	d.Notes += "\n" + note
}
