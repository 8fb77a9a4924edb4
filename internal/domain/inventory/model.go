// Package inventory is the stock ledger: on-hand quantity per product plus the
// append-only movement log that explains every change to it.
package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
)

// MovementType is the direction of a stock change.
type MovementType string

const (
	MovementIn  MovementType = "stock_in"
	MovementOut MovementType = "stock_out"
)

func (t MovementType) Valid() bool {
	return t == MovementIn || t == MovementOut
}

// ParseMovementType accepts only the two ledger directions.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown movement type %q", s)
	}
	return t, nil
}

// Status summarises on-hand quantity against the reorder point.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusLowStock   Status = "low_stock"
	StatusOutOfStock Status = "out_of_stock"
)

// DefaultReorderPoint applies to inventory rows created without an explicit one.
var DefaultReorderPoint = decimal.NewFromInt(10)

// StatusFor derives the status for a quantity.
func StatusFor(onHand, reorderPoint types.Quantity) Status {
	switch {
	case !onHand.IsPositive():
		return StatusOutOfStock
	case onHand.LessThanOrEqual(reorderPoint):
		return StatusLowStock
	default:
		return StatusAvailable
	}
}

// Inventory is the single stock record owned by a product.
type Inventory struct {
	ProductID      id.ID          `db:"product_id" json:"productId"`
	QuantityOnHand types.Quantity `db:"quantity_on_hand" json:"quantityOnHand"`
	ReorderPoint   types.Quantity `db:"reorder_point" json:"reorderPoint"`
	Status         Status         `db:"status" json:"status"`
	LastRestockAt  *time.Time     `db:"last_restock_at" json:"lastRestockAt,omitempty"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// NewInventory creates the row for a freshly created product.
func NewInventory(productID id.ID, initial types.Quantity, now time.Time) *Inventory {
	inv := &Inventory{
		ProductID:      productID,
		QuantityOnHand: initial,
		ReorderPoint:   DefaultReorderPoint,
		UpdatedAt:      now,
	}
	inv.Status = StatusFor(inv.QuantityOnHand, inv.ReorderPoint)
	return inv
}

func (i *Inventory) apply(t MovementType, qty types.Quantity, now time.Time) {
	if t == MovementIn {
		i.QuantityOnHand = i.QuantityOnHand.Add(qty)
	} else {
		i.QuantityOnHand = i.QuantityOnHand.Sub(qty)
	}
	i.Status = StatusFor(i.QuantityOnHand, i.ReorderPoint)
	i.UpdatedAt = now
}

// Movement is an immutable record of one stock change. Quantity is always
// positive; the direction lives in Type.
type Movement struct {
	ID        id.ID          `db:"id" json:"id"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Type      MovementType   `db:"movement_type" json:"movementType"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	Reason    string         `db:"reason" json:"reason"`
	Reference string         `db:"reference" json:"reference,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// Signed returns the movement as a delta on on-hand quantity.
func (m Movement) Signed() types.Quantity {
	if m.Type == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// Cause says why stock moved and which entity caused it.
type Cause struct {
	Reason    string
	Reference string

	// Replenishment marks genuinely new stock (receipts, manual top-ups) as
	// opposed to stock returned by a cancellation; it stamps LastRestockAt.
	Replenishment bool
}

// Reconciliation compares the stored quantity with the movement log.
type Reconciliation struct {
	ProductID id.ID          `json:"productId"`
	OnHand    types.Quantity `json:"onHand"`
	Ledger    types.Quantity `json:"ledger"`
	Drift     types.Quantity `json:"drift"`
}

// Balanced reports whether on-hand equals the signed sum of movements.
func (r Reconciliation) Balanced() bool {
	return r.Drift.IsZero()
}
