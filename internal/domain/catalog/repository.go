package catalog

import (
	"context"

	"tidewater/internal/core/id"
)

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	// GetCustomer returns apperror NOT_FOUND for unknown ids.
	GetCustomer(ctx context.Context, customerID id.ID) (*Customer, error)
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, p *Product) error
	// GetProduct returns apperror NOT_FOUND for unknown ids.
	GetProduct(ctx context.Context, productID id.ID) (*Product, error)
}

type SupplierRepository interface {
	CreateSupplier(ctx context.Context, s *Supplier) error
	GetSupplier(ctx context.Context, supplierID id.ID) (*Supplier, error)
}
