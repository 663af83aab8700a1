// Package tx carries an open *sql.Tx through a context so PostgreSQL stores
// join the caller's transaction instead of opening their own.
package tx

import (
	"context"
	"database/sql"
)

type sqlTxKey struct{}

// Querier is the subset of *sql.DB and *sql.Tx the stores use.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QuerierFrom returns the transaction opened by a Runner further up the
// call chain, or db when there is none.
func QuerierFrom(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := activeTx(ctx); ok {
		return tx
	}
	return db
}

func withTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, sqlTxKey{}, tx)
}

func activeTx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(sqlTxKey{}).(*sql.Tx)
	return tx, ok
}
