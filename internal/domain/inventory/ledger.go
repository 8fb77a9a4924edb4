package inventory

import (
	"context"
	"fmt"
	"strings"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/clock"
	"tidewater/internal/core/id"
	"tidewater/internal/core/tx"
	"tidewater/internal/core/types"
	"tidewater/internal/domain"
	"tidewater/pkg/logger"
)

// AdjustmentReference tags movements created by manual stock adjustments.
const AdjustmentReference = "ADJUSTMENT"

// Ledger is the only writer of on-hand quantity.
//
// Reserve and Restock join the transaction already present in ctx, so callers
// that need several ledger operations to be atomic wrap them in one
// RunInTransaction. Each call mutates the row and appends its movement together.
type Ledger struct {
	repo  Repository
	txm   tx.Manager
	clock clock.Clock
}

func NewLedger(repo Repository, txm tx.Manager, clk clock.Clock) *Ledger {
	return &Ledger{repo: repo, txm: txm, clock: clk}
}

// Reserve takes qty out of stock for the given cause.
// Returns apperror INSUFFICIENT_STOCK when on-hand is smaller than qty.
func (l *Ledger) Reserve(ctx context.Context, productID id.ID, qty types.Quantity, cause Cause) error {
	_, err := l.move(ctx, productID, MovementOut, qty, cause)
	return err
}

// Restock puts qty back into stock.
func (l *Ledger) Restock(ctx context.Context, productID id.ID, qty types.Quantity, cause Cause) error {
	_, err := l.move(ctx, productID, MovementIn, qty, cause)
	return err
}

// QuantityOnHand returns the current quantity without locking.
func (l *Ledger) QuantityOnHand(ctx context.Context, productID id.ID) (types.Quantity, error) {
	inv, err := l.repo.Get(ctx, productID)
	if err != nil {
		return types.Quantity{}, err
	}
	return inv.QuantityOnHand, nil
}

// Get returns the inventory row for a product.
func (l *Ledger) Get(ctx context.Context, productID id.ID) (*Inventory, error) {
	return l.repo.Get(ctx, productID)
}

func (l *Ledger) move(
	ctx context.Context,
	productID id.ID,
	typ MovementType,
	qty types.Quantity,
	cause Cause,
) (*Inventory, error) {
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("quantity must be greater than zero").
			WithDetail("product_id", productID.String()).
			WithDetail("quantity", qty.String())
	}

	var inv *Inventory
	err := l.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		inv, err = l.repo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if typ == MovementOut && inv.QuantityOnHand.LessThan(qty) {
			return apperror.NewInsufficientStock(productID.String(), qty, inv.QuantityOnHand)
		}

		now := l.clock.Now()
		inv.apply(typ, qty, now)
		if typ == MovementIn && cause.Replenishment {
			inv.LastRestockAt = &now
		}
		if err := l.repo.Save(ctx, inv); err != nil {
			return fmt.Errorf("save inventory %s: %w", productID, err)
		}

		movement := &Movement{
			ID:        id.New(),
			ProductID: productID,
			Type:      typ,
			Quantity:  qty,
			Reason:    cause.Reason,
			Reference: cause.Reference,
			CreatedAt: now,
		}
		if err := l.repo.AppendMovement(ctx, movement); err != nil {
			return fmt.Errorf("append movement for %s: %w", productID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "stock moved",
		"product_id", productID,
		"type", typ,
		"quantity", qty.String(),
		"on_hand", inv.QuantityOnHand.String(),
		"reference", cause.Reference,
	)
	return inv, nil
}

// AdjustInput is a manual correction made by staff.
type AdjustInput struct {
	ProductID id.ID
	// Delta is added to on-hand; negative values remove stock.
	Delta  types.Quantity
	Reason string
	// ReorderPoint optionally replaces the reorder point in the same transaction.
	ReorderPoint *types.Quantity
}

// Adjust applies a manual stock correction in its own transaction.
func (l *Ledger) Adjust(ctx context.Context, in AdjustInput) (*Inventory, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, apperror.NewValidation("adjustment reason is required").WithDetail("field", "reason")
	}
	if in.Delta.IsZero() {
		return nil, apperror.NewValidation("adjustment must not be zero").WithDetail("field", "adjustment")
	}
	if in.ReorderPoint != nil && in.ReorderPoint.IsNegative() {
		return nil, apperror.NewValidation("reorder point must not be negative").WithDetail("field", "reorderPoint")
	}

	var inv *Inventory
	err := l.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		cause := Cause{Reason: reason, Reference: AdjustmentReference}
		var err error
		if in.Delta.IsPositive() {
			cause.Replenishment = true
			inv, err = l.move(ctx, in.ProductID, MovementIn, in.Delta, cause)
		} else {
			inv, err = l.move(ctx, in.ProductID, MovementOut, in.Delta.Abs(), cause)
		}
		if err != nil {
			return err
		}

		if in.ReorderPoint != nil {
			inv.ReorderPoint = *in.ReorderPoint
			inv.Status = StatusFor(inv.QuantityOnHand, inv.ReorderPoint)
			if err := l.repo.Save(ctx, inv); err != nil {
				return fmt.Errorf("save reorder point: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory adjusted",
		"product_id", in.ProductID,
		"delta", in.Delta.String(),
		"on_hand", inv.QuantityOnHand.String(),
		"reason", reason,
	)
	return inv, nil
}

// LowStock lists products at or below their reorder point.
func (l *Ledger) LowStock(ctx context.Context, page domain.Page) (domain.ListResult[Inventory], error) {
	return l.repo.ListLowStock(ctx, page.Normalize())
}

// Movements returns movement history, newest first.
func (l *Ledger) Movements(ctx context.Context, filter MovementFilter) (domain.ListResult[Movement], error) {
	filter.Page = filter.Page.Normalize()
	return l.repo.ListMovements(ctx, filter)
}

// Reconcile checks that on-hand equals the signed sum of the product's movements.
// Initial stock is recorded as a movement at product creation, so the two must
// agree from inception.
func (l *Ledger) Reconcile(ctx context.Context, productID id.ID) (Reconciliation, error) {
	var rec Reconciliation
	err := l.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := l.repo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		sum, err := l.repo.SumMovements(ctx, productID)
		if err != nil {
			return fmt.Errorf("sum movements: %w", err)
		}
		rec = Reconciliation{
			ProductID: productID,
			OnHand:    inv.QuantityOnHand,
			Ledger:    sum,
			Drift:     inv.QuantityOnHand.Sub(sum),
		}
		return nil
	})
	if err != nil {
		return Reconciliation{}, err
	}

	if !rec.Balanced() {
		logger.Warn(ctx, "inventory drift detected",
			"product_id", productID,
			"on_hand", rec.OnHand.String(),
			"ledger", rec.Ledger.String(),
		)
	}
	return rec, nil
}
