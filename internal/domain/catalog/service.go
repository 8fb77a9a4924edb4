package catalog

import (
	"context"
	"fmt"
	"strings"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
	"tidewater/internal/core/tx"
	"tidewater/internal/core/types"
	"tidewater/internal/domain/inventory"
	"tidewater/pkg/logger"
)

// InitialStockReason is the movement reason for stock present at product creation.
const InitialStockReason = "Initial stock"

// Service creates catalog records that carry cross-entity invariants: every
// product gets exactly one inventory row, and opening stock goes through the
// ledger so the movement log reconciles from inception.
type Service struct {
	customers CustomerRepository
	products  ProductRepository
	suppliers SupplierRepository
	stock     inventory.Repository
	ledger    *inventory.Ledger
	txm       tx.Manager
	clock     clock.Clock
}

func NewService(
	customers CustomerRepository,
	products ProductRepository,
	suppliers SupplierRepository,
	stock inventory.Repository,
	ledger *inventory.Ledger,
	txm tx.Manager,
	clk clock.Clock,
) *Service {
	return &Service{
		customers: customers,
		products:  products,
		suppliers: suppliers,
		stock:     stock,
		ledger:    ledger,
		txm:       txm,
		clock:     clk,
	}
}

// CreateCustomer stores a customer.
func (s *Service) CreateCustomer(ctx context.Context, c *Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("customer name is required").WithDetail("field", "name")
	}
	if id.IsNil(c.ID) {
		c.ID = id.New()
	}
	c.CreatedAt = s.clock.Now()
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.customers.CreateCustomer(ctx, c)
	})
}

// CreateSupplier stores a supplier.
func (s *Service) CreateSupplier(ctx context.Context, sup *Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return apperror.NewValidation("supplier name is required").WithDetail("field", "name")
	}
	if id.IsNil(sup.ID) {
		sup.ID = id.New()
	}
	sup.CreatedAt = s.clock.Now()
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.suppliers.CreateSupplier(ctx, sup)
	})
}

// CreateProductInput carries the product plus its opening stock.
type CreateProductInput struct {
	Product      Product
	InitialStock types.Quantity
	ReorderPoint *types.Quantity
}

// CreateProduct inserts the product and its inventory row in one transaction.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	p := in.Product
	if p.Status == "" {
		p.Status = ProductActive
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if in.InitialStock.IsNegative() {
		return nil, apperror.NewValidation("initial stock must not be negative").WithDetail("field", "initialStock")
	}
	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	now := s.clock.Now()
	p.CreatedAt = now

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.products.CreateProduct(ctx, &p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}

		inv := inventory.NewInventory(p.ID, types.Quantity{}, now)
		if in.ReorderPoint != nil {
			inv.ReorderPoint = *in.ReorderPoint
			inv.Status = inventory.StatusFor(inv.QuantityOnHand, inv.ReorderPoint)
		}
		if err := s.stock.Create(ctx, inv); err != nil {
			return fmt.Errorf("create inventory: %w", err)
		}

		if in.InitialStock.IsPositive() {
			return s.ledger.Restock(ctx, p.ID, in.InitialStock, inventory.Cause{
				Reason:        InitialStockReason,
				Reference:     "PRODUCT-" + p.ID.String(),
				Replenishment: true,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "product created", "product_id", p.ID, "name", p.Name, "initial_stock", in.InitialStock.String())
	return &p, nil
}

func (s *Service) GetCustomer(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.customers.GetCustomer(ctx, customerID)
}

func (s *Service) GetProduct(ctx context.Context, productID id.ID) (*Product, error) {
	return s.products.GetProduct(ctx, productID)
}
