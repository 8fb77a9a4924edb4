package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tidewater/internal/core/id"
	"tidewater/internal/domain/purchasing"
	"tidewater/internal/infrastructure/http/v1/dto"
)

type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchasing.Service
}

func NewPurchaseOrderHandler(base *BaseHandler, service *purchasing.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{BaseHandler: base, service: service}
}

// POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	po, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, po)
}

// GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	h.run(c, h.service.Get)
}

// POST /purchase-orders/:id/receive
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	h.run(c, h.service.Receive)
}

// POST /purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	h.run(c, h.service.Cancel)
}

func (h *PurchaseOrderHandler) run(c *gin.Context, op func(context.Context, id.ID) (*purchasing.PurchaseOrder, error)) {
	poID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	po, err := op(c.Request.Context(), poID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, po)
}
