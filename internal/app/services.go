// Package app wires domain services on top of a storage backend.
package app

import (
	"tidewater/internal/core/clock"
	"tidewater/internal/core/tx"
	"tidewater/internal/domain/audit"
	"tidewater/internal/domain/catalog"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/events"
	"tidewater/internal/domain/fulfillment"
	"tidewater/internal/domain/inventory"
	"tidewater/internal/domain/order"
	"tidewater/internal/domain/payment"
	"tidewater/internal/domain/purchasing"
)

// Backend is everything a storage implementation provides.
type Backend struct {
	TxManager      tx.Manager
	Customers      catalog.CustomerRepository
	Products       catalog.ProductRepository
	Suppliers      catalog.SupplierRepository
	Inventory      inventory.Repository
	Orders         order.Repository
	Deliveries     delivery.Repository
	Payments       payment.Repository
	PurchaseOrders purchasing.Repository
	Events         events.Publisher
	Audit          audit.Log
}

// Services are the entry points used by the HTTP layer and the CLIs.
type Services struct {
	Ledger      *inventory.Ledger
	Catalog     *catalog.Service
	Fulfillment *fulfillment.Service
	Payments    *payment.Service
	Purchasing  *purchasing.Service
}

// NewServices builds every service over b. A zero policy means the default cutoff rule.
func NewServices(b Backend, clk clock.Clock, policy delivery.Policy) *Services {
	ledger := inventory.NewLedger(b.Inventory, b.TxManager, clk)
	return &Services{
		Ledger:  ledger,
		Catalog: catalog.NewService(b.Customers, b.Products, b.Suppliers, b.Inventory, ledger, b.TxManager, clk),
		Fulfillment: fulfillment.NewService(fulfillment.Deps{
			Customers:  b.Customers,
			Orders:     b.Orders,
			Deliveries: b.Deliveries,
			Ledger:     ledger,
			TxManager:  b.TxManager,
			Clock:      clk,
			Events:     b.Events,
			Audit:      b.Audit,
			Policy:     policy,
		}),
		Payments: payment.NewService(b.Payments, b.Orders, b.TxManager, clk, b.Events, b.Audit),
		Purchasing: purchasing.NewService(b.PurchaseOrders, b.Suppliers, b.Products, ledger,
			b.TxManager, clk, b.Events, b.Audit),
	}
}
