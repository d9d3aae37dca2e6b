package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item kinds.
const (
	ItemKindProduct    = "product"
	ItemKindIngredient = "ingredient"
)

// ValidItemKind reports whether kind is one of the known item kinds.
func ValidItemKind(kind string) bool {
	return kind == ItemKindProduct || kind == ItemKindIngredient
}

// StockItem is a sellable product or raw ingredient tracked by quantity.
// CurrentStock only changes through the adjustment engine; status and total
// value are derived at read time, never stored.
type StockItem struct {
	ID              string
	Kind            string
	Name            string
	Unit            string
	CurrentStock    decimal.Decimal
	MinStock        decimal.Decimal
	MaxStock        decimal.Decimal
	UnitCost        decimal.Decimal
	LastRestockedAt *time.Time
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
