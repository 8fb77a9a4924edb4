package payment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/app/apptest"
	"tidewater/internal/core/apperror"
	"tidewater/internal/core/id"
	"tidewater/internal/domain/events"
	"tidewater/internal/domain/order"
	"tidewater/internal/domain/payment"
)

func TestRecordPayments(t *testing.T) {
	h := apptest.New(t)
	customer := h.Customer(t, "Bay St")
	halibut := h.Product(t, "Halibut", "40.00", "10")
	o := h.Order(t, customer, apptest.Line(halibut, "2.5", "40.00"))
	require.True(t, o.TotalAmount.Equal(apptest.Dec("100")))

	p, updated, err := h.Svc.Payments.Record(h.Ctx, payment.RecordInput{
		OrderID: o.ID,
		Amount:  apptest.Dec("30"),
		Method:  payment.MethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, apptest.Start, p.PaidAt)
	assert.True(t, updated.OutstandingBalance.Equal(apptest.Dec("70")))
	assert.Equal(t, order.PaymentPartial, updated.PaymentStatus)

	_, _, err = h.Svc.Payments.Record(h.Ctx, payment.RecordInput{
		OrderID: o.ID,
		Amount:  apptest.Dec("70.01"),
		Method:  payment.MethodCheck,
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodePaymentExceedsBalance, appErr.Code)

	_, updated, err = h.Svc.Payments.Record(h.Ctx, payment.RecordInput{
		OrderID:   o.ID,
		Amount:    apptest.Dec("70"),
		Method:    payment.MethodBankTransfer,
		Reference: " TRX-991 ",
	})
	require.NoError(t, err)
	assert.True(t, updated.OutstandingBalance.IsZero())
	assert.Equal(t, order.PaymentPaid, updated.PaymentStatus)

	list, err := h.Svc.Payments.ListByOrder(h.Ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	reloaded, err := h.Svc.Fulfillment.GetOrder(h.Ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalAmount.Sub(reloaded.OutstandingBalance).Equal(apptest.Dec("100")))
}

func TestDeletePaymentRestoresBalance(t *testing.T) {
	h := apptest.New(t)
	customer := h.Customer(t, "Bay St")
	crab := h.Product(t, "King crab", "60.00", "10")
	o := h.Order(t, customer, apptest.Line(crab, "1", "60.00"))

	p, _, err := h.Svc.Payments.Record(h.Ctx, payment.RecordInput{OrderID: o.ID, Amount: apptest.Dec("60"), Method: payment.MethodCredit})
	require.NoError(t, err)

	updated, err := h.Svc.Payments.Delete(h.Ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, updated.OutstandingBalance.Equal(apptest.Dec("60")))
	assert.Equal(t, order.PaymentPending, updated.PaymentStatus)

	_, err = h.Svc.Payments.Delete(h.Ctx, p.ID)
	assert.True(t, apperror.IsNotFound(err))

	var published []string
	for _, e := range h.Store.Events() {
		published = append(published, e.Type)
	}
	assert.Equal(t, []string{events.OrderCreated, events.PaymentRecorded, events.PaymentDeleted}, published)
}

func TestRecordPaymentRejections(t *testing.T) {
	h := apptest.New(t)
	customer := h.Customer(t, "Bay St")
	cod := h.Product(t, "Cod", "10.00", "10")
	open := h.Order(t, customer, apptest.Line(cod, "1", "10"))
	cancelled := h.Order(t, customer, apptest.Line(cod, "1", "10"))
	_, err := h.Svc.Fulfillment.CancelOrder(h.Ctx, cancelled.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input payment.RecordInput
		check func(error) bool
	}{
		{"zero amount", payment.RecordInput{OrderID: open.ID, Amount: apptest.Dec("0"), Method: payment.MethodCash}, apperror.IsValidation},
		{"negative amount", payment.RecordInput{OrderID: open.ID, Amount: apptest.Dec("-5"), Method: payment.MethodCash}, apperror.IsValidation},
		{"unknown method", payment.RecordInput{OrderID: open.ID, Amount: apptest.Dec("5"), Method: "barter"}, apperror.IsValidation},
		{"unknown order", payment.RecordInput{OrderID: id.New(), Amount: apptest.Dec("5"), Method: payment.MethodCash}, apperror.IsNotFound},
		{"cancelled order", payment.RecordInput{OrderID: cancelled.ID, Amount: apptest.Dec("5"), Method: payment.MethodCash}, apperror.IsConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := h.Svc.Payments.Record(h.Ctx, tt.input)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
	assert.Zero(t, h.Store.Counts().Payments)
}
