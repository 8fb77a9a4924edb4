package purchasing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/app/apptest"
	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/domain/inventory"
	"tidewater/internal/domain/purchasing"
)

func TestReceivePurchaseOrder(t *testing.T) {
	h := apptest.New(t)
	supplier := h.Supplier(t, "North Atlantic Fisheries")
	salmon := h.Product(t, "Salmon", "20.00", "1")
	clams := h.Product(t, "Clams", "4.00", "0")

	po, err := h.Svc.Purchasing.Create(h.Ctx, purchasing.CreateInput{
		SupplierID: supplier,
		Items: []purchasing.ItemInput{
			{ProductID: salmon, Quantity: apptest.Dec("25.5"), UnitCost: apptest.Dec("12.00")},
			{ProductID: clams, Quantity: apptest.Dec("40"), UnitCost: apptest.Dec("1.25")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusPending, po.Status)
	assert.True(t, po.TotalAmount.Equal(apptest.Dec("356")))
	assert.True(t, h.OnHand(t, salmon).Equal(apptest.Dec("1")), "creating a purchase order does not touch stock")

	h.Clock.Advance(24 * time.Hour)
	received, err := h.Svc.Purchasing.Receive(h.Ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusReceived, received.Status)
	require.NotNil(t, received.ReceivedAt)
	assert.Equal(t, h.Clock.Now(), *received.ReceivedAt)

	assert.True(t, h.OnHand(t, salmon).Equal(apptest.Dec("26.5")))
	assert.True(t, h.OnHand(t, clams).Equal(apptest.Dec("40")))

	inv, err := h.Svc.Ledger.Get(h.Ctx, clams)
	require.NoError(t, err)
	require.NotNil(t, inv.LastRestockAt)
	assert.Equal(t, h.Clock.Now(), *inv.LastRestockAt)
	assert.Equal(t, inventory.StatusAvailable, inv.Status)

	moves := h.Movements(t, purchasing.Reference(po.ID))
	assert.Len(t, moves, 2)
	for _, m := range moves {
		assert.Equal(t, inventory.MovementIn, m.Type)
	}

	_, err = h.Svc.Purchasing.Receive(h.Ctx, po.ID)
	assert.True(t, apperror.IsConflict(err), "receiving twice must not restock twice")
	assert.True(t, h.OnHand(t, salmon).Equal(apptest.Dec("26.5")))
}

func TestCancelPurchaseOrder(t *testing.T) {
	h := apptest.New(t)
	supplier := h.Supplier(t, "Cape Shellfish")
	oysters := h.Product(t, "Oysters", "1.50", "0")

	po, err := h.Svc.Purchasing.Create(h.Ctx, purchasing.CreateInput{
		SupplierID: supplier,
		Items:      []purchasing.ItemInput{{ProductID: oysters, Quantity: apptest.Dec("100"), UnitCost: apptest.Dec("0.60")}},
	})
	require.NoError(t, err)

	cancelled, err := h.Svc.Purchasing.Cancel(h.Ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, purchasing.StatusCancelled, cancelled.Status)

	_, err = h.Svc.Purchasing.Receive(h.Ctx, po.ID)
	assert.True(t, apperror.IsConflict(err))
	assert.True(t, h.OnHand(t, oysters).IsZero())

	got, err := h.Svc.Purchasing.Get(h.Ctx, po.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)
}

func TestCreatePurchaseOrderValidation(t *testing.T) {
	h := apptest.New(t)
	supplier := h.Supplier(t, "Reef Traders")
	squid := h.Product(t, "Squid", "9.00", "0")

	tests := []struct {
		name  string
		input purchasing.CreateInput
		check func(error) bool
	}{
		{"no items", purchasing.CreateInput{SupplierID: supplier}, apperror.IsValidation},
		{"zero quantity", purchasing.CreateInput{SupplierID: supplier, Items: []purchasing.ItemInput{{ProductID: squid, Quantity: apptest.Dec("0"), UnitCost: apptest.Dec("1")}}}, apperror.IsValidation},
		{"unknown supplier", purchasing.CreateInput{SupplierID: id.New(), Items: []purchasing.ItemInput{{ProductID: squid, Quantity: apptest.Dec("1"), UnitCost: apptest.Dec("1")}}}, apperror.IsNotFound},
		{"unknown product", purchasing.CreateInput{SupplierID: supplier, Items: []purchasing.ItemInput{{ProductID: id.New(), Quantity: apptest.Dec("1"), UnitCost: apptest.Dec("1")}}}, apperror.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Svc.Purchasing.Create(h.Ctx, tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}
