package handlers

import (
	"github.com/gin-gonic/gin"

	"tidewater/internal/domain/fulfillment"
	"tidewater/internal/infrastructure/http/v1/dto"
)

type DeliveryHandler struct {
	*BaseHandler
	service *fulfillment.Service
}

func NewDeliveryHandler(base *BaseHandler, service *fulfillment.Service) *DeliveryHandler {
	return &DeliveryHandler{BaseHandler: base, service: service}
}

// UpdateStatus moves a delivery through its state machine.
// PATCH /deliveries/:id/status
func (h *DeliveryHandler) UpdateStatus(c *gin.Context) {
	deliveryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDeliveryStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	d, err := h.service.UpdateDeliveryStatus(c.Request.Context(), deliveryID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// Assign sets the driver.
// PATCH /deliveries/:id/assign
func (h *DeliveryHandler) Assign(c *gin.Context) {
	deliveryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignDeliveryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	d, err := h.service.AssignDelivery(c.Request.Context(), deliveryID, req.Employee())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}
