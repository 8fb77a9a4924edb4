package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"tidewater/internal/domain/purchasing"
)

type CreatePurchaseOrderRequest struct {
	SupplierID string                     `json:"supplierId" binding:"required,uuid"`
	ExpectedAt *time.Time                 `json:"expectedAt"`
	Notes      string                     `json:"notes" binding:"max=2000"`
	Items      []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type PurchaseOrderItemRequest struct {
	ProductID string          `json:"productId" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" binding:"dgt0,dscale"`
	UnitCost  decimal.Decimal `json:"unitCost" binding:"dgte0,dscale"`
}

func (r *CreatePurchaseOrderRequest) ToInput() purchasing.CreateInput {
	in := purchasing.CreateInput{
		SupplierID: mustID(r.SupplierID),
		ExpectedAt: r.ExpectedAt,
		Notes:      r.Notes,
		Items:      make([]purchasing.ItemInput, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, purchasing.ItemInput{
			ProductID: mustID(it.ProductID),
			Quantity:  it.Quantity,
			UnitCost:  it.UnitCost,
		})
	}
	return in
}
