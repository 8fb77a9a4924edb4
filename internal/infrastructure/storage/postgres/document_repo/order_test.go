package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/core/id"
	"tidewater/internal/domain/delivery"
	"tidewater/internal/domain/order"
	"tidewater/internal/infrastructure/storage/postgres"
)

func TestOrderFilter(t *testing.T) {
	customerID := id.New()
	status := delivery.StatusPending
	paid := order.PaymentPaid

	tests := []struct {
		name   string
		filter order.ListFilter
		where  string
		args   []any
	}{
		{name: "empty", where: "(1=1)"},
		{
			name:   "customer",
			filter: order.ListFilter{CustomerID: &customerID},
			where:  "(customer_id = $1)",
			args:   []any{customerID.String()},
		},
		{
			name:   "statuses",
			filter: order.ListFilter{DeliveryStatus: &status, PaymentStatus: &paid},
			where:  "(delivery_status = $1 AND payment_status = $2)",
			args:   []any{status, paid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := postgres.Builder().Select("id").From(ordersTable).
				Where(orderFilter(tt.filter)).ToSql()
			require.NoError(t, err)
			assert.Equal(t, "SELECT id FROM orders WHERE "+tt.where, query)
			if tt.args == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.args, args)
			}
		})
	}
}
