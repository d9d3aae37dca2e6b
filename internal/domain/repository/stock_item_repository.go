package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
)

// ItemFilter narrows List. Zero values mean "no filter"; Active is a
// tri-state pointer so callers can ask for inactive items explicitly.
type ItemFilter struct {
	Kind   string
	Active *bool
	Limit  int
	Offset int
}

// StockItemRepository is the port for the authoritative item store.
type StockItemRepository interface {
	// GetByID returns the item or domain.ErrNotFound.
	GetByID(ctx context.Context, id string) (*entity.StockItem, error)
	// GetForUpdate returns the item with its row locked for the duration of
	// the surrounding transaction. Tx-bound repositories only.
	GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error)
	// List returns items in a stable order for pagination.
	List(ctx context.Context, filter ItemFilter) ([]*entity.StockItem, error)
	// Create persists a new item; domain.ErrDuplicate when the (kind, name)
	// pair already exists.
	Create(ctx context.Context, item *entity.StockItem) error
	// SetQuantity writes the new on-hand quantity. restockedAt, when non-nil,
	// also stamps last_restocked_at. Called only by the adjustment engine
	// inside its transaction; never exposed as a public mutation.
	SetQuantity(ctx context.Context, id string, quantity decimal.Decimal, restockedAt *time.Time) error
	// Deactivate flips is_active off. Items referenced by adjustments are
	// never deleted.
	Deactivate(ctx context.Context, id string) error
}
