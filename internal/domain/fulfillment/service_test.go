package fulfillment_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/app/apptest"
	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
	"tidewater/internal/domain"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/events"
	"tidewater/internal/domain/fulfillment"
	"tidewater/internal/domain/inventory"
	"tidewater/internal/domain/order"
)

var (
	dec  = apptest.Dec
	line = apptest.Line
)

func newFixture(t *testing.T) *apptest.Harness { return apptest.New(t) }

func TestCreateAndCancelOrder(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer(t, "123 Main St")
	salmon := f.Product(t, "Atlantic salmon", "100.00", "5")

	o := f.Order(t, customer, line(salmon, "2", "100.00"))

	assert.True(t, o.TotalAmount.Equal(dec("200.00")))
	assert.True(t, o.OutstandingBalance.Equal(dec("200.00")))
	assert.Equal(t, order.PaymentPending, o.PaymentStatus)
	assert.Equal(t, delivery.StatusProcessing, o.DeliveryStatus)
	assert.Equal(t, "123 Main St", o.DeliveryAddress)
	require.NotNil(t, o.DeliveryDate)
	assert.Equal(t, time.Date(2024, 3, 14, 18, 0, 0, 0, time.UTC), *o.DeliveryDate)
	require.Len(t, o.Items, 1)
	assert.True(t, o.Items[0].Subtotal.Equal(dec("200")))
	require.NotNil(t, o.Delivery)
	assert.Equal(t, delivery.StatusProcessing, o.Delivery.Status)
	assert.Equal(t, delivery.AutoCreatedNote, o.Delivery.Notes)

	assert.True(t, f.OnHand(t, salmon).Equal(dec("3")))
	out := f.Movements(t, order.Reference(o.ID))
	require.Len(t, out, 1)
	assert.Equal(t, inventory.MovementOut, out[0].Type)
	assert.True(t, out[0].Quantity.Equal(dec("2")))

	cancelled, err := f.Svc.Fulfillment.CancelOrder(f.Ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, delivery.StatusCancelled, cancelled.DeliveryStatus)
	require.NotNil(t, cancelled.Delivery)
	assert.Equal(t, delivery.StatusFailed, cancelled.Delivery.Status)

	assert.True(t, f.OnHand(t, salmon).Equal(dec("5")))
	all := f.Movements(t, order.Reference(o.ID))
	require.Len(t, all, 2)
	assert.Equal(t, inventory.MovementIn, all[0].Type, "newest first")
	assert.True(t, all[0].Quantity.Equal(dec("2")))

	reloaded, err := f.Svc.Fulfillment.GetOrder(f.Ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, delivery.StatusCancelled, reloaded.DeliveryStatus)
	assert.Equal(t, delivery.StatusFailed, reloaded.Delivery.Status)
	assert.Len(t, reloaded.Items, 1)

	var published []string
	for _, e := range f.Store.Events() {
		published = append(published, e.Type)
	}
	assert.Equal(t, []string{events.OrderCreated, events.OrderCancelled}, published)
}

func TestCreateOrderInsufficientStockRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer(t, "Pier 39")
	crab := f.Product(t, "Dungeness crab", "35.00", "10")
	prawns := f.Product(t, "Tiger prawns", "22.50", "4")

	before := f.Store.Counts()

	_, err := f.Svc.Fulfillment.CreateOrder(f.Ctx, fulfillment.CreateOrderInput{
		CustomerID: customer,
		Type:       order.TypeWholesale,
		Items: []fulfillment.ItemInput{
			line(crab, "3", "35.00"),
			line(prawns, "10", "22.50"),
		},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, prawns.String(), appErr.Details["product_id"])
	assert.Equal(t, "4", appErr.Details["available"])
	assert.Equal(t, "10", appErr.Details["requested"])

	assert.Equal(t, before, f.Store.Counts())
	assert.True(t, f.OnHand(t, crab).Equal(dec("10")), "earlier line must be rolled back")
	assert.True(t, f.OnHand(t, prawns).Equal(dec("4")))

	list, err := f.Svc.Fulfillment.ListOrders(f.Ctx, order.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.TotalCount)
}

func TestCreateOrderFailures(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer(t, "")
	oysters := f.Product(t, "Oysters", "2.00", "100")
	before := f.Store.Counts()

	tests := []struct {
		name  string
		input fulfillment.CreateOrderInput
		check func(error) bool
	}{
		{
			name:  "unknown customer",
			input: fulfillment.CreateOrderInput{CustomerID: id.New(), Items: []fulfillment.ItemInput{line(oysters, "1", "2")}},
			check: apperror.IsNotFound,
		},
		{
			name:  "unknown product",
			input: fulfillment.CreateOrderInput{CustomerID: customer, Items: []fulfillment.ItemInput{line(oysters, "1", "2"), line(id.New(), "1", "2")}},
			check: apperror.IsNotFound,
		},
		{
			name:  "no items",
			input: fulfillment.CreateOrderInput{CustomerID: customer},
			check: apperror.IsValidation,
		},
		{
			name:  "zero quantity",
			input: fulfillment.CreateOrderInput{CustomerID: customer, Items: []fulfillment.ItemInput{line(oysters, "0", "2")}},
			check: apperror.IsValidation,
		},
		{
			name:  "unknown order type",
			input: fulfillment.CreateOrderInput{CustomerID: customer, Type: "export", Items: []fulfillment.ItemInput{line(oysters, "1", "2")}},
			check: apperror.IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Svc.Fulfillment.CreateOrder(f.Ctx, tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
			assert.Equal(t, before, f.Store.Counts())
			assert.True(t, f.OnHand(t, oysters).Equal(dec("100")))
		})
	}
}

func TestCreateOrderCutoff(t *testing.T) {
	tests := []struct {
		name       string
		placedAt   time.Time
		wantStatus delivery.Status
		wantDate   time.Time
	}{
		{
			name:       "exactly at cutoff",
			placedAt:   time.Date(2024, 3, 14, 15, 0, 0, 0, time.UTC),
			wantStatus: delivery.StatusProcessing,
			wantDate:   time.Date(2024, 3, 14, 18, 0, 0, 0, time.UTC),
		},
		{
			name:       "one second after cutoff",
			placedAt:   time.Date(2024, 3, 14, 15, 0, 1, 0, time.UTC),
			wantStatus: delivery.StatusPending,
			wantDate:   time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			customer := f.Customer(t, "Dock 4")
			cod := f.Product(t, "Cod loin", "18.00", "20")

			f.Clock.Set(tt.placedAt)
			o := f.Order(t, customer, line(cod, "1.5", "18.00"))

			assert.Equal(t, tt.wantStatus, o.DeliveryStatus)
			assert.Equal(t, tt.wantStatus, o.Delivery.Status)
			assert.Equal(t, tt.wantDate, *o.DeliveryDate)
			assert.Equal(t, tt.wantDate, o.Delivery.ScheduledAt)
			assert.True(t, o.TotalAmount.Equal(dec("27.00")))
		})
	}
}

func TestCreateOrderAddressFallback(t *testing.T) {
	f := newFixture(t)
	noAddress := f.Customer(t, "")
	withAddress := f.Customer(t, "12 Wharf Rd")
	tuna := f.Product(t, "Yellowfin tuna", "40.00", "10")

	o := f.Order(t, noAddress, line(tuna, "1", "40"))
	assert.Equal(t, order.NoAddressProvided, o.DeliveryAddress)
	assert.Equal(t, order.NoAddressProvided, o.Delivery.Address)

	o, err := f.Svc.Fulfillment.CreateOrder(f.Ctx, fulfillment.CreateOrderInput{
		CustomerID:      withAddress,
		DeliveryAddress: "Back entrance, 14 Wharf Rd",
		Items:           []fulfillment.ItemInput{line(tuna, "1", "40")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Back entrance, 14 Wharf Rd", o.DeliveryAddress)
	assert.Equal(t, order.TypeRetail, o.Type)
}

func TestFractionalQuantities(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer(t, "Market Hall")
	scallops := f.Product(t, "Scallops", "48.00", "2.5")

	o := f.Order(t, customer, line(scallops, "2.25", "48.00"))
	assert.True(t, o.TotalAmount.Equal(dec("108.00")))
	assert.True(t, f.OnHand(t, scallops).Equal(dec("0.25")))

	_, err := f.Svc.Fulfillment.CreateOrder(f.Ctx, fulfillment.CreateOrderInput{
		CustomerID: customer,
		Items:      []fulfillment.ItemInput{line(scallops, "0.3", "48.00")},
	})
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.True(t, f.OnHand(t, scallops).Equal(dec("0.25")))
}

func TestCancelGuards(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer(t, "1 Quay St")
	mussels := f.Product(t, "Mussels", "6.00", "50")

	t.Run("already cancelled", func(t *testing.T) {
		o := f.Order(t, customer, line(mussels, "5", "6"))
		_, err := f.Svc.Fulfillment.CancelOrder(f.Ctx, o.ID)
		require.NoError(t, err)

		movementsBefore := f.Store.Counts().Movements
		_, err = f.Svc.Fulfillment.CancelOrder(f.Ctx, o.ID)
		assert.True(t, apperror.IsConflict(err))
		assert.Equal(t, movementsBefore, f.Store.Counts().Movements)
		assert.True(t, f.OnHand(t, mussels).Equal(dec("50")))
	})

	t.Run("delivered", func(t *testing.T) {
		o := f.Order(t, customer, line(mussels, "5", "6"))
		_, err := f.Svc.Fulfillment.UpdateDeliveryStatus(f.Ctx, o.Delivery.ID,
			fulfillment.UpdateDeliveryInput{Status: delivery.StatusDelivered})
		require.NoError(t, err)

		_, err = f.Svc.Fulfillment.CancelOrder(f.Ctx, o.ID)
		assert.True(t, apperror.IsConflict(err))
		assert.True(t, f.OnHand(t, mussels).Equal(dec("45")))
	})

	t.Run("unknown order", func(t *testing.T) {
		_, err := f.Svc.Fulfillment.CancelOrder(f.Ctx, id.New())
		assert.True(t, apperror.IsNotFound(err))
	})
}

func TestReserveRestockSymmetry(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer(t, "Harbour Rd")
	products := map[string]id.ID{
		"halibut": f.Product(t, "Halibut", "30.00", "12.5"),
		"squid":   f.Product(t, "Squid", "9.00", "40"),
		"lobster": f.Product(t, "Lobster", "55.00", "6"),
	}
	initial := map[id.ID]types.Quantity{}
	for _, pid := range products {
		initial[pid] = f.OnHand(t, pid)
	}

	orders := []*order.Order{
		f.Order(t, customer, line(products["halibut"], "2.5", "30"), line(products["squid"], "10", "9")),
		f.Order(t, customer, line(products["lobster"], "3", "55"), line(products["halibut"], "1.75", "30")),
		f.Order(t, customer, line(products["squid"], "7", "9"), line(products["lobster"], "1", "55"), line(products["squid"], "3", "9")),
	}

	for _, o := range orders {
		_, err := f.Svc.Fulfillment.CancelOrder(f.Ctx, o.ID)
		require.NoError(t, err)

		moves := f.Movements(t, order.Reference(o.ID))
		in, out := types.Sum(), types.Sum()
		for _, m := range moves {
			if m.Type == inventory.MovementIn {
				in = in.Add(m.Quantity)
			} else {
				out = out.Add(m.Quantity)
			}
		}
		assert.Len(t, moves, 2*len(o.Items))
		assert.True(t, in.Equal(out), "order %s: in %s out %s", o.ID, in, out)
	}

	for name, pid := range products {
		assert.True(t, f.OnHand(t, pid).Equal(initial[pid]), name)

		rec, err := f.Svc.Ledger.Reconcile(f.Ctx, pid)
		require.NoError(t, err)
		assert.True(t, rec.Balanced(), "%s drift %s", name, rec.Drift)
	}
}

func TestConcurrentOrdersDoNotOversell(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer(t, "Fish Market")
	urchin := f.Product(t, "Sea urchin", "12.00", "5")

	const buyers = 12
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		outOfStock int
	)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Svc.Fulfillment.CreateOrder(f.Ctx, fulfillment.CreateOrderInput{
				CustomerID: customer,
				Items:      []fulfillment.ItemInput{line(urchin, "1", "12")},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperror.IsInsufficientStock(err):
				outOfStock++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, buyers-5, outOfStock)
	assert.True(t, f.OnHand(t, urchin).IsZero())

	rec, err := f.Svc.Ledger.Reconcile(f.Ctx, urchin)
	require.NoError(t, err)
	assert.True(t, rec.Balanced())
}

func TestListOrders(t *testing.T) {
	f := newFixture(t)
	a := f.Customer(t, "A")
	b := f.Customer(t, "B")
	clams := f.Product(t, "Clams", "4.00", "100")

	f.Order(t, a, line(clams, "1", "4"))
	f.Clock.Advance(time.Minute)
	f.Order(t, b, line(clams, "1", "4"))
	f.Clock.Advance(time.Minute)
	latest := f.Order(t, a, line(clams, "1", "4"))

	res, err := f.Svc.Fulfillment.ListOrders(f.Ctx, order.ListFilter{CustomerID: &a})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.TotalCount)
	assert.Equal(t, latest.ID, res.Items[0].ID)

	res, err = f.Svc.Fulfillment.ListOrders(f.Ctx, order.ListFilter{Page: domain.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.TotalCount)
	assert.Len(t, res.Items, 1)
}

func TestOrderHistory(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer(t, "123 Main St")
	salmon := f.Product(t, "Atlantic salmon", "100.00", "5")

	o := f.Order(t, customer, line(salmon, "1", "100.00"))
	_, err := f.Svc.Fulfillment.CancelOrder(f.Ctx, o.ID)
	require.NoError(t, err)

	history, err := f.Svc.Fulfillment.OrderHistory(f.Ctx, o.ID, 0)
	require.NoError(t, err)

	var orderActions []string
	for _, r := range history {
		if r.EntityType == "order" {
			assert.Equal(t, o.ID, r.EntityID)
			orderActions = append(orderActions, string(r.Action))
		}
	}
	assert.Equal(t, []string{"cancel", "create"}, orderActions)

	_, err = f.Svc.Fulfillment.OrderHistory(f.Ctx, id.New(), 0)
	assert.True(t, apperror.IsNotFound(err))
}
