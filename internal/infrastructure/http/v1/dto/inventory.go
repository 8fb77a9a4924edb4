package dto

import (
	"github.com/shopspring/decimal"

	"tidewater/internal/core/id"
	"tidewater/internal/domain/inventory"
)

type AdjustInventoryRequest struct {
	Delta        decimal.Decimal  `json:"delta" binding:"dnonzero,dscale"`
	Reason       string           `json:"reason" binding:"required,max=255"`
	ReorderPoint *decimal.Decimal `json:"reorderPoint" binding:"omitempty,dgte0,dscale"`
}

func (r *AdjustInventoryRequest) ToInput(productID id.ID) inventory.AdjustInput {
	return inventory.AdjustInput{
		ProductID:    productID,
		Delta:        r.Delta,
		Reason:       r.Reason,
		ReorderPoint: r.ReorderPoint,
	}
}

type MovementsQuery struct {
	PageQuery
	DateRange
	ProductID string `form:"productId" binding:"omitempty,uuid"`
	Type      string `form:"type" binding:"omitempty,oneof=stock_in stock_out"`
	Reference string `form:"reference" binding:"max=255"`
}

func (q *MovementsQuery) ToFilter() inventory.MovementFilter {
	f := inventory.MovementFilter{
		ProductID: optionalID(q.ProductID),
		Reference: q.Reference,
		From:      q.From,
		To:        q.To,
		Page:      q.Page(),
	}
	if q.Type != "" {
		t := inventory.MovementType(q.Type)
		f.Type = &t
	}
	return f
}
