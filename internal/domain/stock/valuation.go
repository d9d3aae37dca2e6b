package stock

import (
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
)

// TotalValue computes the monetary value of the on-hand quantity.
// Decimal arithmetic end to end: repeated fractional adjustments must not
// drift the way float accumulation would.
func TotalValue(currentStock, unitCost decimal.Decimal) decimal.Decimal {
	return currentStock.Mul(unitCost)
}

// CatalogValue sums per-item values across the catalog with the same
// decimal arithmetic, skipping deactivated items.
func CatalogValue(items []*entity.StockItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if !it.IsActive {
			continue
		}
		total = total.Add(TotalValue(it.CurrentStock, it.UnitCost))
	}
	return total
}
