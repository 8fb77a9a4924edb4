// Package apptest builds a fully wired service graph on the in-memory backend
// for package tests.
package apptest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tidewater/internal/app"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
	"tidewater/internal/domain/catalog"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/fulfillment"
	"tidewater/internal/domain/inventory"
	"tidewater/internal/domain/order"
	"tidewater/internal/infrastructure/storage/memory"
	"tidewater/pkg/logger"
)

// Start is the default test clock: a Thursday morning, before the cutoff.
var Start = time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

type Harness struct {
	Ctx   context.Context
	Store *memory.Store
	Clock *clock.Fixed
	Svc   *app.Services
}

func New(t *testing.T) *Harness {
	t.Helper()
	store := memory.NewStore()
	clk := clock.NewFixed(Start)
	return &Harness{
		Ctx:   logger.WithLogger(context.Background(), logger.Nop()),
		Store: store,
		Clock: clk,
		Svc:   app.NewServices(store.Backend(), clk, delivery.Policy{}),
	}
}

func Dec(s string) types.Quantity { return types.MustDecimal(s) }

func Line(productID id.ID, qty, price string) fulfillment.ItemInput {
	return fulfillment.ItemInput{ProductID: productID, Quantity: Dec(qty), UnitPrice: Dec(price)}
}

func (h *Harness) Customer(t *testing.T, address string) id.ID {
	t.Helper()
	c := &catalog.Customer{Name: "Harbor Grill", Address: address}
	require.NoError(t, h.Svc.Catalog.CreateCustomer(h.Ctx, c))
	return c.ID
}

func (h *Harness) Supplier(t *testing.T, name string) id.ID {
	t.Helper()
	s := &catalog.Supplier{Name: name}
	require.NoError(t, h.Svc.Catalog.CreateSupplier(h.Ctx, s))
	return s.ID
}

func (h *Harness) Product(t *testing.T, name, price, stock string) id.ID {
	t.Helper()
	p, err := h.Svc.Catalog.CreateProduct(h.Ctx, catalog.CreateProductInput{
		Product:      catalog.Product{Name: name, Unit: "kg", BasePrice: Dec(price)},
		InitialStock: Dec(stock),
	})
	require.NoError(t, err)
	return p.ID
}

func (h *Harness) OnHand(t *testing.T, productID id.ID) types.Quantity {
	t.Helper()
	q, err := h.Svc.Ledger.QuantityOnHand(h.Ctx, productID)
	require.NoError(t, err)
	return q
}

func (h *Harness) Movements(t *testing.T, reference string) []inventory.Movement {
	t.Helper()
	res, err := h.Svc.Ledger.Movements(h.Ctx, inventory.MovementFilter{Reference: reference})
	require.NoError(t, err)
	return res.Items
}

func (h *Harness) Order(t *testing.T, customerID id.ID, items ...fulfillment.ItemInput) *order.Order {
	t.Helper()
	o, err := h.Svc.Fulfillment.CreateOrder(h.Ctx, fulfillment.CreateOrderInput{
		CustomerID: customerID,
		Type:       order.TypeRetail,
		Items:      items,
	})
	require.NoError(t, err)
	return o
}
