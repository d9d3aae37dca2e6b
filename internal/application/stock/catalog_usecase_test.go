package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/tavolo-pos/inventory-api/internal/application/stock"
	"github.com/tavolo-pos/inventory-api/internal/domain"
	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
	"github.com/tavolo-pos/inventory-api/internal/domain/stock"
	"github.com/tavolo-pos/inventory-api/internal/infrastructure/memory"
)

func newCatalogUC(store *memory.Store) *appstock.CatalogUseCase {
	return appstock.NewCatalogUseCase(store.Items(), store.Ledger(), stock.NewClassifier(decimal.Zero))
}

func createInput(kind, name string) appstock.CreateItemInput {
	return appstock.CreateItemInput{
		Kind:         kind,
		Name:         name,
		Unit:         "kg",
		InitialStock: dec("10"),
		MinStock:     dec("2"),
		MaxStock:     dec("100"),
		UnitCost:     dec("1.25"),
	}
}

func TestCreateItem(t *testing.T) {
	store := memory.NewStore()
	uc := newCatalogUC(store)
	ctx := context.Background()

	view, err := uc.CreateItem(ctx, createInput(entity.ItemKindIngredient, "flour"))
	require.NoError(t, err)
	assert.NotEmpty(t, view.Item.ID)
	assert.True(t, view.Item.IsActive)
	assert.Equal(t, stock.StatusOK, view.Status)
	assert.True(t, view.TotalValue.Equal(dec("12.5")))

	// Same name, same kind: duplicate.
	_, err = uc.CreateItem(ctx, createInput(entity.ItemKindIngredient, "flour"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Same name, different kind is allowed.
	_, err = uc.CreateItem(ctx, createInput(entity.ItemKindProduct, "flour"))
	assert.NoError(t, err)
}

func TestCreateItem_Validation(t *testing.T) {
	store := memory.NewStore()
	uc := newCatalogUC(store)
	ctx := context.Background()

	bad := createInput(entity.ItemKindIngredient, "rice")
	bad.MinStock = dec("50")
	bad.MaxStock = dec("10")
	_, err := uc.CreateItem(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "min above max")

	bad = createInput("equipment", "oven")
	_, err = uc.CreateItem(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "unknown kind")

	bad = createInput(entity.ItemKindIngredient, "  ")
	_, err = uc.CreateItem(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "blank name")

	bad = createInput(entity.ItemKindIngredient, "oil")
	bad.InitialStock = dec("-1")
	_, err = uc.CreateItem(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "negative initial stock")
}

func TestGetItem_NotFound(t *testing.T) {
	uc := newCatalogUC(memory.NewStore())
	_, err := uc.GetItem(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListItems_FiltersAndStatus(t *testing.T) {
	store := memory.NewStore()
	uc := newCatalogUC(store)
	ctx := context.Background()

	seedItem(t, store, "0", "5", "100")  // out
	seedItem(t, store, "3", "5", "100")  // low
	seedItem(t, store, "50", "5", "100") // ok

	in := createInput(entity.ItemKindProduct, "house lasagna")
	in.InitialStock = dec("40")
	_, err := uc.CreateItem(ctx, in)
	require.NoError(t, err)

	all, err := uc.ListItems(ctx, appstock.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	products, err := uc.ListItems(ctx, appstock.ListFilter{Kind: entity.ItemKindProduct})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "house lasagna", products[0].Item.Name)

	low, err := uc.ListItems(ctx, appstock.ListFilter{Status: stock.StatusLow})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.True(t, low[0].Item.CurrentStock.Equal(dec("3")))
}

func TestLowStock(t *testing.T) {
	store := memory.NewStore()
	uc := newCatalogUC(store)
	ctx := context.Background()

	out := seedItem(t, store, "0", "5", "100")
	low := seedItem(t, store, "3", "5", "100")
	seedItem(t, store, "50", "5", "100")

	// Deactivated items stay off the restocking dashboard.
	hidden := seedItem(t, store, "0", "5", "100")
	require.NoError(t, uc.DeactivateItem(ctx, hidden.ID))

	views, err := uc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	ids := map[string]string{views[0].Item.ID: views[0].Status, views[1].Item.ID: views[1].Status}
	assert.Equal(t, stock.StatusOut, ids[out.ID])
	assert.Equal(t, stock.StatusLow, ids[low.ID])
}

func TestValuation(t *testing.T) {
	store := memory.NewStore()
	uc := newCatalogUC(store)
	ctx := context.Background()

	seedItem(t, store, "4", "1", "10")  // 4 * 2.50 = 10
	seedItem(t, store, "10", "1", "20") // 10 * 2.50 = 25

	total, count, err := uc.Valuation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.True(t, total.Equal(dec("35")), "got %s", total)
}

func TestHistory_Pagination(t *testing.T) {
	store := memory.NewStore()
	catalogUC := newCatalogUC(store)
	item := seedItem(t, store, "100", "5", "1000")
	adjustUC := newAdjustUC(store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := adjustUC.Adjust(ctx, adjustInput(item.ID, entity.OperationRemove, "1", entity.ReasonSale))
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	records, total, err := catalogUC.History(ctx, item.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, records, 2)
	// Newest first.
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt) || records[0].CreatedAt.Equal(records[1].CreatedAt))
	assert.True(t, records[0].NewStock.Equal(dec("95")))

	tail, _, err := catalogUC.History(ctx, item.ID, 10, 4)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.True(t, tail[0].PreviousStock.Equal(dec("100")), "oldest record starts from the seed quantity")

	_, _, err = catalogUC.History(ctx, "missing", 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeactivateItem(t *testing.T) {
	store := memory.NewStore()
	uc := newCatalogUC(store)
	ctx := context.Background()

	item := seedItem(t, store, "10", "2", "50")
	require.NoError(t, uc.DeactivateItem(ctx, item.ID))

	view, err := uc.GetItem(ctx, item.ID)
	require.NoError(t, err, "deactivated items stay readable")
	assert.False(t, view.Item.IsActive)

	assert.ErrorIs(t, uc.DeactivateItem(ctx, "missing"), domain.ErrNotFound)
}
