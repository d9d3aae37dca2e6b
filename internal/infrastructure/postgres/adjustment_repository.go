package postgres

import (
	"context"
	"fmt"

	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
	"github.com/tavolo-pos/inventory-api/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

const adjustmentColumns = `id, item_id, operation, quantity, reason, notes, previous_stock, new_stock, actor_id, created_at`

// AdjustmentRepo implements the append-only ledger over PostgreSQL.
// There is deliberately no UPDATE or DELETE here: ledger rows are immutable
// once written.
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository builds the adapter. Pass pool or tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Append persists one ledger entry inside the caller's transaction.
func (r *AdjustmentRepo) Append(ctx context.Context, record *entity.AdjustmentRecord) error {
	query := `
		INSERT INTO stock_adjustments (id, item_id, operation, quantity, reason, notes, previous_stock, new_stock, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	notes := (*string)(nil)
	if record.Notes != "" {
		notes = &record.Notes
	}
	_, err := r.q.Exec(ctx, query,
		record.ID, record.ItemID, record.Operation, record.Quantity, record.Reason,
		notes, record.PreviousStock, record.NewStock, record.ActorID, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append adjustment: %w", err)
	}
	return nil
}

// ListByItem returns an item's entries newest first. Plain read, no locks.
func (r *AdjustmentRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.AdjustmentRecord, error) {
	query := `
		SELECT ` + adjustmentColumns + `
		FROM stock_adjustments WHERE item_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()

	var list []*entity.AdjustmentRecord
	for rows.Next() {
		var rec entity.AdjustmentRecord
		var notes *string
		if err := rows.Scan(&rec.ID, &rec.ItemID, &rec.Operation, &rec.Quantity, &rec.Reason,
			&notes, &rec.PreviousStock, &rec.NewStock, &rec.ActorID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		if notes != nil {
			rec.Notes = *notes
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// CountByItem returns the total entries for an item.
func (r *AdjustmentRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM stock_adjustments WHERE item_id = $1`, itemID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count adjustments: %w", err)
	}
	return n, nil
}
