// Package pgstore assembles the Postgres repositories into an app.Backend.
package pgstore

import (
	"fmt"

	"tidewater/internal/app"
	"tidewater/internal/core/clock"
	"tidewater/internal/infrastructure/storage/postgres"
	"tidewater/internal/infrastructure/storage/postgres/catalog_repo"
	"tidewater/internal/infrastructure/storage/postgres/document_repo"
	"tidewater/internal/infrastructure/storage/postgres/register_repo"
)

// Backend builds every repository over one transaction manager.
func Backend(pool *postgres.Pool, clk clock.Clock) (app.Backend, error) {
	txm := postgres.NewTxManager(pool)

	recorder, err := postgres.NewAuditRecorder(txm, clk)
	if err != nil {
		return app.Backend{}, fmt.Errorf("audit recorder: %w", err)
	}

	catalog := catalog_repo.NewCatalogRepo(txm)
	return app.Backend{
		TxManager:      txm,
		Customers:      catalog,
		Products:       catalog,
		Suppliers:      catalog,
		Inventory:      register_repo.NewInventoryRepo(txm),
		Orders:         document_repo.NewOrderRepo(txm),
		Deliveries:     document_repo.NewDeliveryRepo(txm),
		Payments:       document_repo.NewPaymentRepo(txm),
		PurchaseOrders: document_repo.NewPurchaseOrderRepo(txm),
		Events:         postgres.NewOutboxPublisher(txm, clk),
		Audit:          recorder,
	}, nil
}
