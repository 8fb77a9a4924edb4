// Package catalog_repo stores customers, suppliers and products.
package catalog_repo

import (
	"context"

	"tidewater/internal/core/id"
	"tidewater/internal/domain/catalog"
	"tidewater/internal/infrastructure/storage/postgres"
)

const (
	customersTable = "customers"
	suppliersTable = "suppliers"
	productsTable  = "products"
)

var (
	_ catalog.CustomerRepository = (*CatalogRepo)(nil)
	_ catalog.ProductRepository  = (*CatalogRepo)(nil)
	_ catalog.SupplierRepository = (*CatalogRepo)(nil)
)

// CatalogRepo implements the three catalog repositories.
type CatalogRepo struct {
	customers *postgres.Table[catalog.Customer]
	suppliers *postgres.Table[catalog.Supplier]
	products  *postgres.Table[catalog.Product]
}

func NewCatalogRepo(txm *postgres.TxManager) *CatalogRepo {
	return &CatalogRepo{
		customers: postgres.NewTable[catalog.Customer](txm, customersTable, "id", "customer"),
		suppliers: postgres.NewTable[catalog.Supplier](txm, suppliersTable, "id", "supplier"),
		products:  postgres.NewTable[catalog.Product](txm, productsTable, "id", "product"),
	}
}

func (r *CatalogRepo) CreateCustomer(ctx context.Context, c *catalog.Customer) error {
	return r.customers.Insert(ctx, c)
}

func (r *CatalogRepo) GetCustomer(ctx context.Context, customerID id.ID) (*catalog.Customer, error) {
	return r.customers.Get(ctx, customerID)
}

func (r *CatalogRepo) CreateSupplier(ctx context.Context, s *catalog.Supplier) error {
	return r.suppliers.Insert(ctx, s)
}

func (r *CatalogRepo) GetSupplier(ctx context.Context, supplierID id.ID) (*catalog.Supplier, error) {
	return r.suppliers.Get(ctx, supplierID)
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return r.products.Insert(ctx, p)
}

func (r *CatalogRepo) GetProduct(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	return r.products.Get(ctx, productID)
}
