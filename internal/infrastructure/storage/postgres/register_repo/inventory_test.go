package register_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidewater/internal/core/id"
	"tidewater/internal/domain/inventory"
	"tidewater/internal/infrastructure/storage/postgres"
)

func TestMovementFilter(t *testing.T) {
	productID := id.New()
	out := inventory.MovementOut
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := postgres.Builder().Select("id").From(movementsTable).
		Where(movementFilter(inventory.MovementFilter{
			ProductID: &productID,
			Type:      &out,
			Reference: "ORDER-1",
			From:      &from,
		})).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM stock_movements WHERE (product_id = $1 AND movement_type = $2 AND reference = $3 AND created_at >= $4)",
		query)
	assert.Equal(t, []any{productID.String(), out, "ORDER-1", from}, args)
}

func TestMovementFilterEmpty(t *testing.T) {
	query, args, err := postgres.Builder().Select("id").From(movementsTable).
		Where(movementFilter(inventory.MovementFilter{})).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM stock_movements WHERE (1=1)", query)
	assert.Empty(t, args)
}

func TestSumMovementsQuery(t *testing.T) {
	productID := id.New()
	query, args, err := sumMovementsQuery(productID).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "CASE movement_type WHEN 'stock_in' THEN quantity ELSE -quantity END")
	assert.Contains(t, query, "WHERE product_id = $1")
	assert.Equal(t, []any{productID.String()}, args)
}
