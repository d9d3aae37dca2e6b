package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/inventory-api/internal/domain"
	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
	"github.com/tavolo-pos/inventory-api/internal/domain/repository"
)

var _ repository.StockItemRepository = (*StockItemRepo)(nil)

const stockItemColumns = `id, kind, name, unit, current_stock, min_stock, max_stock, unit_cost, last_restocked_at, is_active, created_at, updated_at`

// StockItemRepo implements StockItemRepository over PostgreSQL. Pass a pool
// for plain reads or a tx for the adjustment critical section (Querier).
type StockItemRepo struct {
	q Querier
}

// NewStockItemRepository builds the adapter. Pass pool or tx (Querier).
func NewStockItemRepository(q Querier) *StockItemRepo {
	return &StockItemRepo{q: q}
}

// GetByID returns an item or domain.ErrNotFound.
func (r *StockItemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetForUpdate returns the item with its row locked (SELECT FOR UPDATE).
// Only meaningful on a tx-bound repository; the wait is bounded by the
// lock_timeout the transaction runner sets.
func (r *StockItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// List returns items in a stable (name, id) order for pagination.
func (r *StockItemRepo) List(ctx context.Context, filter repository.ItemFilter) ([]*entity.StockItem, error) {
	query := `SELECT ` + stockItemColumns + ` FROM stock_items WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", pos)
		args = append(args, filter.Kind)
		pos++
	}
	if filter.Active != nil {
		query += fmt.Sprintf(" AND is_active = $%d", pos)
		args = append(args, *filter.Active)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY name, id LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Create persists a new item; domain.ErrDuplicate on (kind, name) collision.
func (r *StockItemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, kind, name, unit, current_stock, min_stock, max_stock, unit_cost, last_restocked_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.Kind, item.Name, item.Unit, item.CurrentStock, item.MinStock,
		item.MaxStock, item.UnitCost, item.LastRestockedAt, item.IsActive,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// SetQuantity writes the new on-hand quantity inside the adjustment
// transaction. Not routed anywhere outside the engine.
func (r *StockItemRepo) SetQuantity(ctx context.Context, id string, quantity decimal.Decimal, restockedAt *time.Time) error {
	query := `
		UPDATE stock_items
		SET current_stock = $2,
		    last_restocked_at = COALESCE($3, last_restocked_at),
		    updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, quantity, restockedAt)
	if err != nil {
		if isLockConflict(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("set quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate flips is_active off; the row itself is never deleted.
func (r *StockItemRepo) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE stock_items SET is_active = false, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate stock item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *StockItemRepo) scanOne(row pgx.Row) (*entity.StockItem, error) {
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isLockConflict(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}
	return it, nil
}

func scanItem(row pgx.Row) (*entity.StockItem, error) {
	var it entity.StockItem
	err := row.Scan(
		&it.ID, &it.Kind, &it.Name, &it.Unit, &it.CurrentStock, &it.MinStock,
		&it.MaxStock, &it.UnitCost, &it.LastRestockedAt, &it.IsActive,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}
