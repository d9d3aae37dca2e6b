package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tavolo-pos/inventory-api/internal/application/stock"
	"github.com/tavolo-pos/inventory-api/internal/domain"
	"github.com/tavolo-pos/inventory-api/internal/domain/repository"
)

var _ stock.TxRunner = (*TxRunner)(nil)

// TxRunner executes callbacks inside a PostgreSQL transaction with
// repositories bound to that transaction. The per-transaction lock_timeout
// bounds how long an adjustment waits on a contended row before the engine
// retries it.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner builds the runner with the pool.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	if lockTimeout <= 0 {
		lockTimeout = 2 * time.Second
	}
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run begins a transaction, executes fn with tx-bound repositories and
// commits, or rolls everything back on error. Lock waits that exceed the
// configured timeout surface as domain.ErrConflict so the engine can retry.
func (r *TxRunner) Run(ctx context.Context, fn func(
	items repository.StockItemRepository,
	ledger repository.AdjustmentRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockMillis := r.lockTimeout.Milliseconds()
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", lockMillis)); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	items := NewStockItemRepository(tx)
	ledger := NewAdjustmentRepository(tx)

	if err := fn(items, ledger); err != nil {
		if isLockConflict(err) {
			return domain.ErrConflict
		}
		return wrapPersistence(err)
	}
	if err := tx.Commit(ctx); err != nil {
		if isLockConflict(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("%w: commit transaction: %v", domain.ErrPersistence, err)
	}
	return nil
}

// wrapPersistence tags storage failures that are not already domain errors.
func wrapPersistence(err error) error {
	switch {
	case err == nil,
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrDuplicate):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
}
