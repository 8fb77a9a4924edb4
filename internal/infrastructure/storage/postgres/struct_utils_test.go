package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tidewater/internal/core/id"
	"tidewater/internal/core/types"
	"tidewater/internal/domain/order"
)

type stamped struct {
	CreatedAt time.Time `db:"created_at"`
}

type sample struct {
	stamped
	ID       id.ID  `db:"id"`
	Name     string `db:"name"`
	Skipped  string `db:"-"`
	Untagged string
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"created_at", "id", "name"}, Columns[sample]())
	assert.Equal(t,
		[]string{"id", "order_id", "line_no", "product_id", "quantity", "unit_price", "subtotal"},
		Columns[order.Item]())
}

func TestOrderColumnsSkipLoadedRelations(t *testing.T) {
	cols := Columns[order.Order]()
	assert.NotContains(t, cols, "items")
	assert.NotContains(t, cols, "delivery")
	assert.Contains(t, cols, "outstanding_balance")
}

func TestRow(t *testing.T) {
	now := time.Now().UTC()
	s := &sample{stamped: stamped{CreatedAt: now}, ID: id.New(), Name: "Cod", Skipped: "x"}

	cols, vals := Row(s)
	assert.Equal(t, []string{"created_at", "id", "name"}, cols)
	assert.Equal(t, []any{now, s.ID, "Cod"}, vals)

	cols, vals = Row(s, "created_at")
	assert.Equal(t, []string{"id", "name"}, cols)
	assert.Len(t, vals, 2)

	cols, _ = Row(42)
	assert.Nil(t, cols)
}

func TestStructToMap(t *testing.T) {
	item := order.Item{ID: id.New(), LineNo: 2, Quantity: types.MustDecimal("1.5")}
	m := StructToMap(item, "id")

	assert.NotContains(t, m, "id")
	assert.Equal(t, 2, m["line_no"])
	assert.Equal(t, types.MustDecimal("1.5"), m["quantity"])
}
