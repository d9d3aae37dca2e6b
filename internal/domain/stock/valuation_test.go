package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
	"github.com/tavolo-pos/inventory-api/internal/domain/stock"
)

func TestTotalValue(t *testing.T) {
	got := stock.TotalValue(decimal.NewFromInt(25), decimal.NewFromInt(1000))
	assert.True(t, got.Equal(decimal.NewFromInt(25000)), "got %s", got)
}

// Summing 10,000 increments of 0.1 must land on exactly 1000 — the drift
// that float64 accumulation would introduce is the whole point of using
// decimal for quantities and money.
func TestTotalValue_NoDriftUnderRepeatedFractions(t *testing.T) {
	tenth := decimal.RequireFromString("0.1")

	cost := decimal.Zero
	for i := 0; i < 10_000; i++ {
		cost = cost.Add(tenth)
	}
	require.True(t, cost.Equal(decimal.NewFromInt(1000)), "accumulated %s", cost)

	got := stock.TotalValue(decimal.NewFromInt(3), cost)
	assert.True(t, got.Equal(decimal.NewFromInt(3000)), "got %s", got)
}

func TestCatalogValue(t *testing.T) {
	items := []*entity.StockItem{
		{CurrentStock: decimal.NewFromInt(4), UnitCost: decimal.RequireFromString("2.50"), IsActive: true},
		{CurrentStock: decimal.NewFromInt(10), UnitCost: decimal.RequireFromString("0.33"), IsActive: true},
		// Deactivated items do not count toward the catalog value.
		{CurrentStock: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(9), IsActive: false},
	}
	got := stock.CatalogValue(items)
	assert.True(t, got.Equal(decimal.RequireFromString("13.30")), "got %s", got)
}
