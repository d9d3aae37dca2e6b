package stock

import (
	"context"

	"github.com/tavolo-pos/inventory-api/internal/domain/repository"
)

// TxRunner executes a function inside a storage transaction, handing it
// repositories bound to that transaction. Commit on nil, rollback on error:
// the catalog write and the ledger append can never diverge.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		items repository.StockItemRepository,
		ledger repository.AdjustmentRepository,
	) error) error
}

// Metrics receives adjustment outcomes for observability. Implemented over
// Prometheus in infrastructure; a no-op implementation serves tests.
type Metrics interface {
	AdjustmentApplied(operation, reason string)
	AdjustmentRejected(cause string)
	ConflictRetried()
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) AdjustmentApplied(string, string) {}
func (NopMetrics) AdjustmentRejected(string)        {}
func (NopMetrics) ConflictRetried()                 {}
