package handlers

import (
	"github.com/gin-gonic/gin"

	"tidewater/internal/domain/inventory"
	"tidewater/internal/infrastructure/http/v1/dto"
)

type InventoryHandler struct {
	*BaseHandler
	ledger *inventory.Ledger
}

func NewInventoryHandler(base *BaseHandler, ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, ledger: ledger}
}

// Get returns the stock row of a product.
// GET /inventory/:productId
func (h *InventoryHandler) Get(c *gin.Context) {
	productID, ok := h.ParamID(c, "productId")
	if !ok {
		return
	}
	inv, err := h.ledger.Get(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// Adjust applies a manual correction.
// POST /inventory/:productId/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	productID, ok := h.ParamID(c, "productId")
	if !ok {
		return
	}
	var req dto.AdjustInventoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	inv, err := h.ledger.Adjust(c.Request.Context(), req.ToInput(productID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, inv)
}

// LowStock lists products at or below their reorder point.
// GET /inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}
	result, err := h.ledger.LowStock(c.Request.Context(), q.Page())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Movements lists the movement log, newest first.
// GET /inventory/movements
func (h *InventoryHandler) Movements(c *gin.Context) {
	var q dto.MovementsQuery
	if !h.BindQuery(c, &q) {
		return
	}
	result, err := h.ledger.Movements(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Reconcile compares on-hand with the movement log.
// GET /inventory/:productId/reconcile
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	productID, ok := h.ParamID(c, "productId")
	if !ok {
		return
	}
	rec, err := h.ledger.Reconcile(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{
		"productId": rec.ProductID,
		"onHand":    rec.OnHand,
		"ledger":    rec.Ledger,
		"drift":     rec.Drift,
		"balanced":  rec.Balanced(),
	})
}
