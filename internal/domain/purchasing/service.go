package purchasing

import (
	"context"
	"fmt"
	"time"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
	"tidewater/internal/core/tx"
	"tidewater/internal/core/types"
	"tidewater/internal/domain/audit"
	"tidewater/internal/domain/catalog"
	"tidewater/internal/domain/events"
	"tidewater/internal/domain/inventory"
	"tidewater/pkg/logger"
)

type Service struct {
	repo      Repository
	suppliers catalog.SupplierRepository
	products  catalog.ProductRepository
	ledger    *inventory.Ledger
	txm       tx.Manager
	clock     clock.Clock
	events    events.Publisher
	audit     audit.Recorder
}

func NewService(
	repo Repository,
	suppliers catalog.SupplierRepository,
	products catalog.ProductRepository,
	ledger *inventory.Ledger,
	txm tx.Manager,
	clk clock.Clock,
	publisher events.Publisher,
	recorder audit.Recorder,
) *Service {
	return &Service{
		repo:      repo,
		suppliers: suppliers,
		products:  products,
		ledger:    ledger,
		txm:       txm,
		clock:     clk,
		events:    publisher,
		audit:     recorder,
	}
}

type ItemInput struct {
	ProductID id.ID
	Quantity  types.Quantity
	UnitCost  types.Money
}

type CreateInput struct {
	SupplierID id.ID
	ExpectedAt *time.Time
	Notes      string
	Items      []ItemInput
}

// Create stores a pending purchase order. Stock is untouched until Receive.
func (s *Service) Create(ctx context.Context, in CreateInput) (*PurchaseOrder, error) {
	if len(in.Items) == 0 {
		return nil, apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}
	for i, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return nil, apperror.NewValidation("quantity must be greater than zero").
				WithDetail("field", "items").WithDetail("lineNo", i+1)
		}
		if it.UnitCost.IsNegative() {
			return nil, apperror.NewValidation("unit cost must not be negative").
				WithDetail("field", "items").WithDetail("lineNo", i+1)
		}
	}

	po := newPurchaseOrder(in.SupplierID, in.ExpectedAt, in.Notes, s.clock.Now())
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.suppliers.GetSupplier(ctx, in.SupplierID); err != nil {
			return err
		}
		for _, it := range in.Items {
			if _, err := s.products.GetProduct(ctx, it.ProductID); err != nil {
				return err
			}
			po.addItem(it.ProductID, it.Quantity, it.UnitCost)
		}
		if err := s.repo.Create(ctx, po); err != nil {
			return fmt.Errorf("create purchase order: %w", err)
		}
		if err := s.repo.CreateItems(ctx, po.Items); err != nil {
			return fmt.Errorf("create purchase order items: %w", err)
		}
		return s.audit.Record(ctx, audit.NewEntry(ctx, "purchase_order", po.ID, audit.ActionCreate, po))
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order created", "purchase_order_id", po.ID, "items", len(po.Items))
	return po, nil
}

// Receive restocks every item and marks the purchase order received.
func (s *Service) Receive(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	var po *PurchaseOrder
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		po, err = s.load(ctx, poID, true)
		if err != nil {
			return err
		}
		if err := po.ensurePending("receive"); err != nil {
			return err
		}

		cause := inventory.Cause{
			Reason:        fmt.Sprintf("Purchase order #%s received", po.ID),
			Reference:     Reference(po.ID),
			Replenishment: true,
		}
		for _, it := range po.Items {
			if err := s.ledger.Restock(ctx, it.ProductID, it.Quantity, cause); err != nil {
				return fmt.Errorf("restock %s: %w", it.ProductID, err)
			}
		}

		now := s.clock.Now()
		po.Status = StatusReceived
		po.ReceivedAt = &now
		po.UpdatedAt = now
		if err := s.repo.Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}

		if err := s.events.Publish(ctx, events.Event{
			AggregateType: events.AggregatePurchaseOrder,
			AggregateID:   po.ID,
			Type:          events.PurchaseOrderReceived,
			Payload:       map[string]any{"purchase_order_id": po.ID, "items": len(po.Items)},
		}); err != nil {
			return fmt.Errorf("publish purchase order received: %w", err)
		}
		return s.audit.Record(ctx, audit.NewEntry(ctx, "purchase_order", po.ID, audit.ActionReceive, po))
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase order received", "purchase_order_id", po.ID, "items", len(po.Items))
	return po, nil
}

// Cancel is allowed only while the purchase order is pending.
func (s *Service) Cancel(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	var po *PurchaseOrder
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		po, err = s.load(ctx, poID, true)
		if err != nil {
			return err
		}
		if err := po.ensurePending("cancel"); err != nil {
			return err
		}
		po.Status = StatusCancelled
		po.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		return s.audit.Record(ctx, audit.NewEntry(ctx, "purchase_order", po.ID, audit.ActionCancel, po))
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "purchase order cancelled", "purchase_order_id", po.ID)
	return po, nil
}

// Get returns a purchase order with its items.
func (s *Service) Get(ctx context.Context, poID id.ID) (*PurchaseOrder, error) {
	return s.load(ctx, poID, false)
}

func (s *Service) load(ctx context.Context, poID id.ID, forUpdate bool) (*PurchaseOrder, error) {
	var (
		po  *PurchaseOrder
		err error
	)
	if forUpdate {
		po, err = s.repo.GetForUpdate(ctx, poID)
	} else {
		po, err = s.repo.GetByID(ctx, poID)
	}
	if err != nil {
		return nil, err
	}
	po.Items, err = s.repo.ListItems(ctx, poID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order items: %w", err)
	}
	return po, nil
}
