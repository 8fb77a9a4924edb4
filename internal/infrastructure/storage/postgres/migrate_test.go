package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrderedAndEmbedded(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}

	var all strings.Builder
	for _, m := range migrations {
		all.WriteString(m.SQL)
	}
	schema := all.String()
	for _, table := range []string{
		"customers", "products", "inventory", "stock_movements", "orders", "order_items",
		"deliveries", "payments", "purchase_orders", "purchase_order_items",
		"sys_outbox", "sys_outbox_dlq", "sys_audit", "sys_idempotency",
	} {
		assert.Contains(t, schema, "CREATE TABLE "+table+" (", table)
	}
	assert.Contains(t, schema, "order_id     UUID        NOT NULL UNIQUE", "one delivery per order")
}
