package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// SendBatch queues every statement in one pgx.Batch and executes them in a
// single round trip on the active transaction.
func (m *TxManager) SendBatch(ctx context.Context, stmts []squirrel.Sqlizer) error {
	if len(stmts) == 0 {
		return nil
	}
	tx := m.GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("send batch: transaction required")
	}

	batch := &pgx.Batch{}
	for _, s := range stmts {
		query, args, err := s.ToSql()
		if err != nil {
			return fmt.Errorf("build batch statement: %w", err)
		}
		batch.Queue(query, args...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := range stmts {
		if _, err := results.Exec(); err != nil {
			return TranslateError(fmt.Errorf("batch statement %d: %w", i+1, err))
		}
	}
	return nil
}
