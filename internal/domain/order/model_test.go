package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
	"tidewater/internal/domain/delivery"
)

var now = time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

func dec(s string) types.Money { return types.MustDecimal(s) }

func TestNewOrderStartsZeroed(t *testing.T) {
	o := New(id.New(), TypeRetail, "123 Main St", "", now)

	assert.True(t, o.TotalAmount.IsZero())
	assert.True(t, o.OutstandingBalance.IsZero())
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, delivery.StatusPending, o.DeliveryStatus)
	assert.NotNil(t, o.Items)
}

func TestAddItemKeepsTotalInSync(t *testing.T) {
	o := New(id.New(), TypeWholesale, "", "", now)

	first := o.AddItem(id.New(), dec("2"), dec("100.00"))
	second := o.AddItem(id.New(), dec("1.5"), dec("12.40"))

	assert.Equal(t, 1, first.LineNo)
	assert.Equal(t, 2, second.LineNo)
	assert.True(t, second.Subtotal.Equal(dec("18.60")))
	assert.True(t, o.TotalAmount.Equal(dec("218.60")))
	assert.True(t, o.OutstandingBalance.Equal(o.TotalAmount))
	assert.True(t, o.TotalAmount.Equal(first.Subtotal.Add(second.Subtotal)))
}

func TestOverdueHeldUntilPaid(t *testing.T) {
	o := New(id.New(), TypeRetail, "", "", now)
	o.AddItem(id.New(), dec("1"), dec("80"))
	o.PaymentStatus = PaymentOverdue

	require.NoError(t, o.Recalculate(dec("30"), now))
	assert.Equal(t, PaymentOverdue, o.PaymentStatus)

	require.NoError(t, o.Recalculate(dec("80"), now))
	assert.Equal(t, PaymentPaid, o.PaymentStatus)

	status, err := ParsePaymentStatus("overdue")
	require.NoError(t, err)
	assert.Equal(t, PaymentOverdue, status)
}

func TestRecalculate(t *testing.T) {
	o := New(id.New(), TypeRetail, "", "", now)
	o.AddItem(id.New(), dec("2"), dec("100"))

	require.NoError(t, o.Recalculate(dec("0"), now))
	assert.Equal(t, PaymentPending, o.PaymentStatus)

	require.NoError(t, o.Recalculate(dec("50"), now))
	assert.True(t, o.OutstandingBalance.Equal(dec("150")))
	assert.Equal(t, PaymentPartial, o.PaymentStatus)

	require.NoError(t, o.Recalculate(dec("200"), now))
	assert.True(t, o.OutstandingBalance.IsZero())
	assert.Equal(t, PaymentPaid, o.PaymentStatus)

	err := o.Recalculate(dec("200.01"), now)
	assert.True(t, apperror.HasCode(err, apperror.CodePaymentExceedsBalance))
	// rejected recalculation leaves the previous state intact
	assert.True(t, o.OutstandingBalance.IsZero())
}

func TestCancelGuards(t *testing.T) {
	for _, st := range []delivery.Status{delivery.StatusDelivered, delivery.StatusCancelled} {
		o := New(id.New(), TypeRetail, "", "", now)
		o.DeliveryStatus = st
		err := o.Cancel(now)
		assert.True(t, apperror.IsConflict(err), st)
		assert.Equal(t, st, o.DeliveryStatus)
	}

	o := New(id.New(), TypeRetail, "", "", now)
	o.ApplySchedule(now.Add(8*time.Hour), delivery.StatusProcessing, now)
	require.NoError(t, o.Cancel(now))
	assert.Equal(t, delivery.StatusCancelled, o.DeliveryStatus)
}

func TestResolveAddress(t *testing.T) {
	assert.Equal(t, "Pier 9", ResolveAddress(" Pier 9 ", "123 Main St"))
	assert.Equal(t, "123 Main St", ResolveAddress("", "123 Main St"))
	assert.Equal(t, NoAddressProvided, ResolveAddress("   ", ""))
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("")
	require.NoError(t, err)
	assert.Equal(t, TypeRetail, typ)

	typ, err = ParseType("Wholesale")
	require.NoError(t, err)
	assert.Equal(t, TypeWholesale, typ)

	_, err = ParseType("export")
	assert.Error(t, err)
}
