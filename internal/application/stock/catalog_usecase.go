package stock

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/inventory-api/internal/domain"
	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
	"github.com/tavolo-pos/inventory-api/internal/domain/repository"
	"github.com/tavolo-pos/inventory-api/internal/domain/stock"
)

// CatalogUseCase serves reads over the stock catalog and the ledger, plus
// item onboarding and deactivation. Reads take no locks and may observe a
// slightly stale snapshot; they never mutate state.
type CatalogUseCase struct {
	items      repository.StockItemRepository
	ledger     repository.AdjustmentRepository
	classifier stock.Classifier
}

// NewCatalogUseCase builds the catalog use case.
func NewCatalogUseCase(items repository.StockItemRepository, ledger repository.AdjustmentRepository, classifier stock.Classifier) *CatalogUseCase {
	return &CatalogUseCase{items: items, ledger: ledger, classifier: classifier}
}

// CreateItemInput carries item onboarding data.
type CreateItemInput struct {
	Kind         string
	Name         string
	Unit         string
	InitialStock decimal.Decimal
	MinStock     decimal.Decimal
	MaxStock     decimal.Decimal
	UnitCost     decimal.Decimal
}

// ListFilter narrows ListItems. Status filtering happens after
// classification so single-item and bulk paths share one code path.
type ListFilter struct {
	Kind   string
	Status string
	Active *bool
	Limit  int
	Offset int
}

// CreateItem validates and persists a new stock item. Name must be unique
// within its kind; thresholds must satisfy 0 <= min <= max.
func (uc *CatalogUseCase) CreateItem(ctx context.Context, input CreateItemInput) (ItemWithHealth, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Unit = strings.TrimSpace(input.Unit)
	if input.Name == "" || input.Unit == "" || !entity.ValidItemKind(input.Kind) {
		return ItemWithHealth{}, domain.ErrInvalidInput
	}
	if input.InitialStock.IsNegative() || input.UnitCost.IsNegative() {
		return ItemWithHealth{}, domain.ErrInvalidInput
	}
	if input.MinStock.IsNegative() || input.MaxStock.IsNegative() || input.MinStock.GreaterThan(input.MaxStock) {
		return ItemWithHealth{}, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	item := &entity.StockItem{
		ID:           uuid.New().String(),
		Kind:         input.Kind,
		Name:         input.Name,
		Unit:         input.Unit,
		CurrentStock: input.InitialStock,
		MinStock:     input.MinStock,
		MaxStock:     input.MaxStock,
		UnitCost:     input.UnitCost,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return ItemWithHealth{}, err
	}
	return uc.enrich(item), nil
}

// GetItem returns one item with derived status and value.
func (uc *CatalogUseCase) GetItem(ctx context.Context, id string) (ItemWithHealth, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return ItemWithHealth{}, err
	}
	return uc.enrich(item), nil
}

// ListItems returns enriched items matching the filter, in a stable order.
func (uc *CatalogUseCase) ListItems(ctx context.Context, filter ListFilter) ([]ItemWithHealth, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	items, err := uc.items.List(ctx, repository.ItemFilter{
		Kind:   filter.Kind,
		Active: filter.Active,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]ItemWithHealth, 0, len(items))
	for _, it := range items {
		v := uc.enrich(it)
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// LowStock returns every active item classified low or out, for the
// restocking dashboard. Same classifier as single-item responses.
func (uc *CatalogUseCase) LowStock(ctx context.Context) ([]ItemWithHealth, error) {
	active := true
	items, err := uc.items.List(ctx, repository.ItemFilter{Active: &active, Limit: 1000})
	if err != nil {
		return nil, err
	}
	out := make([]ItemWithHealth, 0)
	for _, it := range items {
		v := uc.enrich(it)
		if v.Status == stock.StatusLow || v.Status == stock.StatusOut {
			out = append(out, v)
		}
	}
	return out, nil
}

// Valuation sums the value of the active catalog using decimal arithmetic.
func (uc *CatalogUseCase) Valuation(ctx context.Context) (decimal.Decimal, int, error) {
	active := true
	items, err := uc.items.List(ctx, repository.ItemFilter{Active: &active, Limit: 10000})
	if err != nil {
		return decimal.Zero, 0, err
	}
	return stock.CatalogValue(items), len(items), nil
}

// History returns the item's ledger, newest first, with page metadata.
// Fails with domain.ErrNotFound when the item does not exist.
func (uc *CatalogUseCase) History(ctx context.Context, itemID string, limit, offset int) ([]*entity.AdjustmentRecord, int, error) {
	if _, err := uc.items.GetByID(ctx, itemID); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 20
	}
	records, err := uc.ledger.ListByItem(ctx, itemID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.ledger.CountByItem(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// DeactivateItem flips the item off. Adjustment history stays intact; items
// referenced by the ledger are never deleted.
func (uc *CatalogUseCase) DeactivateItem(ctx context.Context, id string) error {
	if _, err := uc.items.GetByID(ctx, id); err != nil {
		return err
	}
	return uc.items.Deactivate(ctx, id)
}

func (uc *CatalogUseCase) enrich(item *entity.StockItem) ItemWithHealth {
	return ItemWithHealth{
		Item:       item,
		Status:     uc.classifier.Classify(item.CurrentStock, item.MinStock),
		TotalValue: stock.TotalValue(item.CurrentStock, item.UnitCost),
	}
}
