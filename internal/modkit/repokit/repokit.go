// Package repokit holds the shared pieces SQL repositories are built from
package repokit

import (
	"context"
	"fmt"

	"orderlens/internal/platform/store"
)

type (
	Queryer    = store.RowQuerier
	TxRunner   = store.TxRunner
	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// Binder turns a Queryer (pool or open tx) into a domain repository
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain constructor to Binder
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// MustBind binds q and panics when it is nil, a wiring bug that should stop startup
func MustBind[T any](b Binder[T], q Queryer) T {
	if q == nil {
		panic("repokit: bind on nil Queryer")
	}
	return b.Bind(q)
}

// Hook runs first thing inside a transaction opened by InTx
type Hook func(ctx context.Context, q Queryer) error

// InTx runs hooks then fn in one transaction on tx
func InTx(ctx context.Context, tx TxRunner, fn func(Queryer) error, hooks ...Hook) error {
	return tx.Tx(ctx, func(q Queryer) error {
		for _, h := range hooks {
			if err := h(ctx, q); err != nil {
				return err
			}
		}
		return fn(q)
	})
}

// SetLocal is a Hook issuing SET LOCAL name = 'value'. name is trusted, never user input
func SetLocal(name, value string) Hook {
	stmt := fmt.Sprintf("SET LOCAL %s = '%s'", name, value)
	return func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, stmt)
		return err
	}
}
