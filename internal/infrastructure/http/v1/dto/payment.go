package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"tidewater/internal/core/id"
	"tidewater/internal/domain/order"
	"tidewater/internal/domain/payment"
)

type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"dgt0,dscale"`
	Method    string          `json:"method" binding:"required,oneof=cash check bank_transfer credit"`
	PaidAt    *time.Time      `json:"paidAt"`
	Reference string          `json:"reference" binding:"max=255"`
	Notes     string          `json:"notes" binding:"max=2000"`
}

func (r *RecordPaymentRequest) ToInput(orderID id.ID) payment.RecordInput {
	return payment.RecordInput{
		OrderID:   orderID,
		Amount:    r.Amount,
		Method:    payment.Method(r.Method),
		PaidAt:    r.PaidAt,
		Reference: r.Reference,
		Notes:     r.Notes,
	}
}

// PaymentResponse returns the payment with the order totals it produced.
type PaymentResponse struct {
	Payment *payment.Payment `json:"payment"`
	Order   *order.Order     `json:"order"`
}
