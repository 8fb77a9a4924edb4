// Package purchasing handles supplier purchase orders; receiving one restocks
// the inventory ledger.
package purchasing

import (
	"time"

	"github.com/shopspring/decimal"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

type PurchaseOrder struct {
	ID          id.ID       `db:"id" json:"id"`
	SupplierID  id.ID       `db:"supplier_id" json:"supplierId"`
	Status      Status      `db:"status" json:"status"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	ExpectedAt  *time.Time  `db:"expected_at" json:"expectedAt,omitempty"`
	ReceivedAt  *time.Time  `db:"received_at" json:"receivedAt,omitempty"`
	Notes       string      `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`

	Items []Item `db:"-" json:"items"`
}

type Item struct {
	ID              id.ID          `db:"id" json:"id"`
	PurchaseOrderID id.ID          `db:"purchase_order_id" json:"purchaseOrderId"`
	LineNo          int            `db:"line_no" json:"lineNo"`
	ProductID       id.ID          `db:"product_id" json:"productId"`
	Quantity        types.Quantity `db:"quantity" json:"quantity"`
	UnitCost        types.Money    `db:"unit_cost" json:"unitCost"`
	Subtotal        types.Money    `db:"subtotal" json:"subtotal"`
}

func newPurchaseOrder(supplierID id.ID, expectedAt *time.Time, notes string, now time.Time) *PurchaseOrder {
	return &PurchaseOrder{
		ID:          id.New(),
		SupplierID:  supplierID,
		Status:      StatusPending,
		TotalAmount: decimal.Zero,
		ExpectedAt:  expectedAt,
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (po *PurchaseOrder) addItem(productID id.ID, qty types.Quantity, unitCost types.Money) {
	po.Items = append(po.Items, Item{
		ID:              id.New(),
		PurchaseOrderID: po.ID,
		LineNo:          len(po.Items) + 1,
		ProductID:       productID,
		Quantity:        qty,
		UnitCost:        unitCost,
		Subtotal:        types.LineTotal(qty, unitCost),
	})
	po.TotalAmount = po.TotalAmount.Add(po.Items[len(po.Items)-1].Subtotal)
}

func (po *PurchaseOrder) ensurePending(action string) error {
	if po.Status != StatusPending {
		return apperror.NewConflict("purchase order is not pending").
			WithDetail("purchase_order_id", po.ID.String()).
			WithDetail("status", string(po.Status)).
			WithDetail("action", action)
	}
	return nil
}

// Reference is the movement reference for stock received on this purchase order.
func Reference(poID id.ID) string {
	return "PO-" + poID.String()
}
