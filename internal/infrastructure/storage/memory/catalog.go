package memory

import (
	"context"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/domain/catalog"
)

type CatalogRepo struct{ s *Store }

func (s *Store) Catalog() *CatalogRepo { return &CatalogRepo{s: s} }

var (
	_ catalog.CustomerRepository = (*CatalogRepo)(nil)
	_ catalog.ProductRepository  = (*CatalogRepo)(nil)
	_ catalog.SupplierRepository = (*CatalogRepo)(nil)
)

func (r *CatalogRepo) CreateCustomer(ctx context.Context, c *catalog.Customer) error {
	return r.s.with(ctx, func(st *state) error {
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *CatalogRepo) GetCustomer(ctx context.Context, customerID id.ID) (*catalog.Customer, error) {
	var out catalog.Customer
	err := r.s.with(ctx, func(st *state) error {
		c, ok := st.customers[customerID]
		if !ok {
			return apperror.NewNotFound("customer", customerID)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p *catalog.Product) error {
	return r.s.with(ctx, func(st *state) error {
		st.products[p.ID] = *p
		return nil
	})
}

func (r *CatalogRepo) GetProduct(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	var out catalog.Product
	err := r.s.with(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CatalogRepo) CreateSupplier(ctx context.Context, sup *catalog.Supplier) error {
	return r.s.with(ctx, func(st *state) error {
		st.suppliers[sup.ID] = *sup
		return nil
	})
}

func (r *CatalogRepo) GetSupplier(ctx context.Context, supplierID id.ID) (*catalog.Supplier, error) {
	var out catalog.Supplier
	err := r.s.with(ctx, func(st *state) error {
		sup, ok := st.suppliers[supplierID]
		if !ok {
			return apperror.NewNotFound("supplier", supplierID)
		}
		out = sup
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
