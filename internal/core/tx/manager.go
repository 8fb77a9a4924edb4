// Package tx defines the unit-of-work boundary used by domain services.
// The concrete implementations live in infrastructure/storage.
package tx

import (
	"context"
)

// Manager runs fn inside one transaction carried in ctx.
//
// fn returning nil commits; any error (or panic) rolls back and the error is
// returned unchanged. Nested calls join the transaction already in ctx, so a
// service may call another service's transactional method without opening a
// second unit of work.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager adds read-only transactions for query paths.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
