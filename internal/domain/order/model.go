// Package order is the order aggregate: header, immutable line items, and the
// total/balance computation derived from them.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
	"tidewater/internal/domain/delivery"
)

// NoAddressProvided is stored when neither the request nor the customer has an address.
const NoAddressProvided = "No address provided"

// Type distinguishes retail from wholesale orders.
type Type string

const (
	TypeRetail    Type = "retail"
	TypeWholesale Type = "wholesale"
)

// ParseType defaults an empty value to retail.
func ParseType(s string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeRetail:
		return TypeRetail, nil
	case TypeWholesale:
		return TypeWholesale, nil
	}
	return "", fmt.Errorf("unknown order type %q", s)
}

// PaymentStatus is derived from total and outstanding balance. Overdue is
// never derived: it is set externally and held until the balance is cleared.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch p := PaymentStatus(s); p {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentOverdue:
		return p, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// Order is the aggregate root.
type Order struct {
	ID                 id.ID           `db:"id" json:"id"`
	CustomerID         id.ID           `db:"customer_id" json:"customerId"`
	Type               Type            `db:"order_type" json:"orderType"`
	TotalAmount        types.Money     `db:"total_amount" json:"totalAmount"`
	OutstandingBalance types.Money     `db:"outstanding_balance" json:"outstandingBalance"`
	PaymentStatus      PaymentStatus   `db:"payment_status" json:"paymentStatus"`
	DeliveryStatus     delivery.Status `db:"delivery_status" json:"deliveryStatus"`
	DeliveryAddress    string          `db:"delivery_address" json:"deliveryAddress"`
	DeliveryDate       *time.Time      `db:"delivery_date" json:"deliveryDate,omitempty"`
	Notes              string          `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time       `db:"updated_at" json:"updatedAt"`

	Items    []Item             `db:"-" json:"items"`
	Delivery *delivery.Delivery `db:"-" json:"delivery,omitempty"`
}

// Item is one order line. Never updated after creation.
type Item struct {
	ID        id.ID          `db:"id" json:"id"`
	OrderID   id.ID          `db:"order_id" json:"orderId"`
	LineNo    int            `db:"line_no" json:"lineNo"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	Subtotal  types.Money    `db:"subtotal" json:"subtotal"`
}

// New creates an order header with zeroed totals and pending statuses.
func New(customerID id.ID, typ Type, address, notes string, now time.Time) *Order {
	return &Order{
		ID:                 id.New(),
		CustomerID:         customerID,
		Type:               typ,
		TotalAmount:        decimal.Zero,
		OutstandingBalance: decimal.Zero,
		PaymentStatus:      PaymentPending,
		DeliveryStatus:     delivery.StatusPending,
		DeliveryAddress:    address,
		Notes:              notes,
		CreatedAt:          now,
		UpdatedAt:          now,
		Items:              make([]Item, 0),
	}
}

// ResolveAddress picks the first non-blank of the requested and customer
// addresses, falling back to NoAddressProvided.
func ResolveAddress(requested, customer string) string {
	if a := strings.TrimSpace(requested); a != "" {
		return a
	}
	if a := strings.TrimSpace(customer); a != "" {
		return a
	}
	return NoAddressProvided
}

// AddItem appends a line and recomputes the total. The order must not have
// received payments yet, which holds during creation.
func (o *Order) AddItem(productID id.ID, qty types.Quantity, unitPrice types.Money) Item {
	item := Item{
		ID:        id.New(),
		OrderID:   o.ID,
		LineNo:    len(o.Items) + 1,
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		Subtotal:  types.LineTotal(qty, unitPrice),
	}
	o.Items = append(o.Items, item)
	o.TotalAmount = o.ItemsTotal()
	o.OutstandingBalance = o.TotalAmount
	return item
}

// ItemsTotal sums the line subtotals.
func (o *Order) ItemsTotal() types.Money {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal)
	}
	return total
}

// Recalculate derives total, outstanding balance and payment status from the
// loaded items and the sum of applied payments. It rejects a state where
// payments exceed the total.
func (o *Order) Recalculate(paid types.Money, now time.Time) error {
	total := o.ItemsTotal()
	outstanding := total.Sub(paid)
	if outstanding.IsNegative() {
		return apperror.NewPaymentExceedsBalance(o.ID.String(), paid, total)
	}

	o.TotalAmount = total
	o.OutstandingBalance = outstanding
	switch {
	case o.PaymentStatus == PaymentOverdue && outstanding.IsPositive():
		// stays overdue
	case paid.IsZero():
		o.PaymentStatus = PaymentPending
	case outstanding.IsZero():
		o.PaymentStatus = PaymentPaid
	default:
		o.PaymentStatus = PaymentPartial
	}
	o.UpdatedAt = now
	return nil
}

// ApplySchedule records the delivery slot produced by the scheduler.
func (o *Order) ApplySchedule(at time.Time, status delivery.Status, now time.Time) {
	o.DeliveryDate = &at
	o.DeliveryStatus = status
	o.UpdatedAt = now
}

// EnsureCancellable returns a CONFLICT error for delivered or cancelled orders.
func (o *Order) EnsureCancellable() error {
	if o.DeliveryStatus.Terminal() {
		return apperror.NewConflict("order cannot be cancelled").
			WithDetail("order_id", o.ID.String()).
			WithDetail("delivery_status", string(o.DeliveryStatus))
	}
	return nil
}

// Cancel marks the order cancelled. Callers restore stock first.
func (o *Order) Cancel(now time.Time) error {
	if err := o.EnsureCancellable(); err != nil {
		return err
	}
	o.DeliveryStatus = delivery.StatusCancelled
	o.UpdatedAt = now
	return nil
}

// SetDeliveryStatus mirrors a delivery update onto the order.
func (o *Order) SetDeliveryStatus(status delivery.Status, now time.Time) {
	o.DeliveryStatus = status
	o.UpdatedAt = now
}

// Reference is the movement reference used for stock changes caused by this order.
func Reference(orderID id.ID) string {
	return "ORDER-" + orderID.String()
}
