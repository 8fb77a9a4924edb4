package handlers

import (
	"github.com/gin-gonic/gin"

	"tidewater/internal/domain/payment"
	"tidewater/internal/infrastructure/http/v1/dto"
)

type PaymentHandler struct {
	*BaseHandler
	service *payment.Service
}

func NewPaymentHandler(base *BaseHandler, service *payment.Service) *PaymentHandler {
	return &PaymentHandler{BaseHandler: base, service: service}
}

// Record applies a payment to an order.
// POST /orders/:id/payments
func (h *PaymentHandler) Record(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.RecordPaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, o, err := h.service.Record(c.Request.Context(), req.ToInput(orderID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.PaymentResponse{Payment: p, Order: o})
}

// List returns the payments of an order.
// GET /orders/:id/payments
func (h *PaymentHandler) List(c *gin.Context) {
	orderID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	payments, err := h.service.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": payments})
}

// Delete removes a payment and restores the order balance.
// DELETE /payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	paymentID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	o, err := h.service.Delete(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, o)
}
