package postgres

import (
	"context"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"tidewater/internal/core/apperror"
	"tidewater/internal/domain"
)

// Builder returns a squirrel builder using $n placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Table is the generic CRUD core embedded by the repositories. Columns come
// from the "db" tags of T.
type Table[T any] struct {
	txm    *TxManager
	name   string
	key    string
	entity string
	cols   []string
}

// NewTable binds T to a table. entity names the record in NOT_FOUND errors.
func NewTable[T any](txm *TxManager, name, key, entity string) *Table[T] {
	return &Table[T]{txm: txm, name: name, key: key, entity: entity, cols: Columns[T]()}
}

func (t *Table[T]) Name() string { return t.name }

func (t *Table[T]) TxManager() *TxManager { return t.txm }

// Select starts a SELECT of every column of T.
func (t *Table[T]) Select() squirrel.SelectBuilder {
	return Builder().Select(t.cols...).From(t.name)
}

// Insert writes one row.
func (t *Table[T]) Insert(ctx context.Context, v *T) error {
	cols, vals := Row(v)
	_, err := t.Exec(ctx, Builder().Insert(t.name).Columns(cols...).Values(vals...))
	if err != nil {
		return fmt.Errorf("insert %s: %w", t.name, err)
	}
	return nil
}

// InsertMany writes rows in one batch. Must run inside a transaction.
func (t *Table[T]) InsertMany(ctx context.Context, rows []T) error {
	stmts := make([]squirrel.Sqlizer, 0, len(rows))
	for i := range rows {
		cols, vals := Row(&rows[i])
		stmts = append(stmts, Builder().Insert(t.name).Columns(cols...).Values(vals...))
	}
	if err := t.txm.SendBatch(ctx, stmts); err != nil {
		return fmt.Errorf("insert %s: %w", t.name, err)
	}
	return nil
}

// Update overwrites every column except the key and the listed immutable ones.
func (t *Table[T]) Update(ctx context.Context, v *T, immutable ...string) error {
	data := StructToMap(v, append(slices.Clone(immutable), t.key)...)
	keyVal := StructToMap(v)[t.key]

	tag, err := t.Exec(ctx, Builder().Update(t.name).SetMap(data).Where(squirrel.Eq{t.key: keyVal}))
	if err != nil {
		return fmt.Errorf("update %s: %w", t.name, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(t.entity, keyVal)
	}
	return nil
}

// Get returns the row with the given key.
func (t *Table[T]) Get(ctx context.Context, key any) (*T, error) {
	return t.GetWhere(ctx, t.Select().Where(squirrel.Eq{t.key: key}), key)
}

// GetForUpdate locks the row until the surrounding transaction ends.
func (t *Table[T]) GetForUpdate(ctx context.Context, key any) (*T, error) {
	return t.GetWhere(ctx, t.Select().Where(squirrel.Eq{t.key: key}).Suffix("FOR UPDATE"), key)
}

// GetWhere runs a single-row query; no rows yields NOT_FOUND for key.
func (t *Table[T]) GetWhere(ctx context.Context, q squirrel.SelectBuilder, key any) (*T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", t.name, err)
	}
	out := new(T)
	if err := pgxscan.Get(ctx, t.txm.GetQuerier(ctx), out, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(t.entity, key)
		}
		return nil, TranslateError(fmt.Errorf("get %s: %w", t.name, err))
	}
	return out, nil
}

// List returns every row matched by q. The result is never nil.
func (t *Table[T]) List(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", t.name, err)
	}
	out := make([]T, 0)
	if err := pgxscan.Select(ctx, t.txm.GetQuerier(ctx), &out, query, args...); err != nil {
		return nil, TranslateError(fmt.Errorf("list %s: %w", t.name, err))
	}
	return out, nil
}

// Page counts the rows matched by where and returns one page in orderBy order.
func (t *Table[T]) Page(ctx context.Context, where squirrel.Sqlizer, orderBy []string, page domain.Page) (domain.ListResult[T], error) {
	page = page.Normalize()

	count := Builder().Select("COUNT(*)").From(t.name)
	rows := t.Select()
	if where != nil {
		count = count.Where(where)
		rows = rows.Where(where)
	}

	query, args, err := count.ToSql()
	if err != nil {
		return domain.ListResult[T]{}, fmt.Errorf("build count %s: %w", t.name, err)
	}
	var total int64
	if err := t.txm.GetQuerier(ctx).QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return domain.ListResult[T]{}, TranslateError(fmt.Errorf("count %s: %w", t.name, err))
	}

	items, err := t.List(ctx, rows.OrderBy(orderBy...).Limit(uint64(page.Limit)).Offset(uint64(page.Offset)))
	if err != nil {
		return domain.ListResult[T]{}, err
	}
	return domain.NewListResult(items, total, page), nil
}

// Exec runs any squirrel statement on the active querier.
func (t *Table[T]) Exec(ctx context.Context, b squirrel.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("build statement: %w", err)
	}
	tag, err := t.txm.GetQuerier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return tag, TranslateError(err)
	}
	return tag, nil
}
