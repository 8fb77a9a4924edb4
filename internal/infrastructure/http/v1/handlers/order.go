package handlers

import (
	"github.com/gin-gonic/gin"

	"tidewater/internal/domain/fulfillment"
	"tidewater/internal/infrastructure/http/v1/dto"
)

// OrderHandler serves order placement, lookup and cancellation.
type OrderHandler struct {
	*BaseHandler
	service *fulfillment.Service
}

func NewOrderHandler(base *BaseHandler, service *fulfillment.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// Create places an order.
// POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	o, err := h.service.CreateOrder(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, o)
}

// Get returns an order with its items and delivery.
// GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	o, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// History returns the audit trail of an order and its delivery.
// GET /orders/:id/history
func (h *OrderHandler) History(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	records, err := h.service.OrderHistory(c.Request.Context(), orderID, q.Page().Limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, records)
}

// List returns orders newest first.
// GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var q dto.ListOrdersQuery
	if !h.BindQuery(c, &q) {
		return
	}
	result, err := h.service.ListOrders(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Cancel cancels an order and returns its stock.
// POST /orders/:id/cancel, DELETE /orders/:id
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	o, err := h.service.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}

// CreateDelivery attaches a delivery to an order that has none.
// POST /orders/:id/delivery
func (h *OrderHandler) CreateDelivery(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	d, err := h.service.CreateDelivery(c.Request.Context(), orderID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, d)
}
