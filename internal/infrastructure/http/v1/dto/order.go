package dto

import (
	"github.com/shopspring/decimal"

	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/fulfillment"
	"tidewater/internal/domain/order"
)

type CreateOrderRequest struct {
	CustomerID      string             `json:"customerId" binding:"required,uuid"`
	OrderType       string             `json:"orderType" binding:"omitempty,oneof=retail wholesale"`
	DeliveryAddress string             `json:"deliveryAddress" binding:"max=500"`
	Notes           string             `json:"notes" binding:"max=2000"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID string          `json:"productId" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" binding:"dgt0,dscale"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"dgte0,dscale"`
}

func (r *CreateOrderRequest) ToInput() fulfillment.CreateOrderInput {
	in := fulfillment.CreateOrderInput{
		CustomerID:      mustID(r.CustomerID),
		Type:            order.Type(r.OrderType),
		DeliveryAddress: r.DeliveryAddress,
		Notes:           r.Notes,
		Items:           make([]fulfillment.ItemInput, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, fulfillment.ItemInput{
			ProductID: mustID(it.ProductID),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return in
}

type ListOrdersQuery struct {
	PageQuery
	DateRange
	CustomerID     string `form:"customerId" binding:"omitempty,uuid"`
	DeliveryStatus string `form:"deliveryStatus" binding:"omitempty,oneof=pending processing in_transit delivered failed cancelled"`
	PaymentStatus  string `form:"paymentStatus" binding:"omitempty,oneof=pending partial paid overdue"`
}

func (q *ListOrdersQuery) ToFilter() order.ListFilter {
	f := order.ListFilter{
		CustomerID: optionalID(q.CustomerID),
		From:       q.From,
		To:         q.To,
		Page:       q.Page(),
	}
	if q.DeliveryStatus != "" {
		s := delivery.Status(q.DeliveryStatus)
		f.DeliveryStatus = &s
	}
	if q.PaymentStatus != "" {
		s := order.PaymentStatus(q.PaymentStatus)
		f.PaymentStatus = &s
	}
	return f
}
