// Package repokit is the seam between service code and the sql store: repos
// are bound to a Queryer, services run them through a TxRunner.
package repokit

import (
	"context"

	"scandesk/internal/platform/store"
)

type (
	// Queryer is what a bound repo runs its statements on.
	Queryer = store.RowQuerier
	// TxRunner opens transactions for services.
	TxRunner = store.TxRunner
)

// Binder makes a repo of type T that runs on a given Queryer, so the same
// repo code serves pool and transaction callers.
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain constructor to Binder.
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// WithTx runs fn in one transaction on db.
func WithTx(ctx context.Context, db TxRunner, fn func(Queryer) error) error {
	return db.Tx(ctx, fn)
}
