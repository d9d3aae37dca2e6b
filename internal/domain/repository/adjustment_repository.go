package repository

import (
	"context"

	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
)

// AdjustmentRepository is the port for the append-only adjustment ledger.
// There are deliberately no update or delete operations.
type AdjustmentRepository interface {
	// Append persists a new ledger entry inside the caller's transaction.
	Append(ctx context.Context, record *entity.AdjustmentRecord) error
	// ListByItem returns entries for an item in reverse-chronological order.
	// Plain reads, no locks.
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.AdjustmentRecord, error)
	// CountByItem returns the total number of entries for an item.
	CountByItem(ctx context.Context, itemID string) (int, error)
}
