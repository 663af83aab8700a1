package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "casetrack/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

// Runner opens a transaction per unit of work and exposes it to stores
// through the context.
type Runner struct {
	db      *sql.DB
	timeout time.Duration
	opts    *sql.TxOptions
}

// NewRunner builds a Runner over db. opts may be nil for the driver default
// isolation level.
func NewRunner(db *sql.DB, opts *sql.TxOptions) *Runner {
	return &Runner{db: db, opts: opts, timeout: defaultTxTimeout}
}

// RunInTx executes fn inside a transaction, committing when fn returns nil.
// Nested calls reuse the outer transaction.
func (r *Runner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := activeTx(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, r.opts)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(withTx(ctx, sqlTx)); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type memoryTxKey struct{}

// MemoryRunner serializes units of work with one coarse lock. It backs the
// in-memory stores, which have no transactions of their own. Nested calls
// reuse the held lock.
type MemoryRunner struct {
	mu      sync.Mutex
	timeout time.Duration
}

func NewMemoryRunner() *MemoryRunner {
	return &MemoryRunner{timeout: defaultTxTimeout}
}

func (r *MemoryRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memoryTxKey{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(context.WithValue(ctx, memoryTxKey{}, struct{}{}))
}
