package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/inventory-api/internal/application/stock"
	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
)

// CreateItemRequest body for POST /api/stock/items.
type CreateItemRequest struct {
	Kind         string          `json:"kind" validate:"required,oneof=product ingredient"`
	Name         string          `json:"name" validate:"required,min=1,max=255"`
	Unit         string          `json:"unit" validate:"required,min=1,max=20"`
	InitialStock decimal.Decimal `json:"initial_stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	MaxStock     decimal.Decimal `json:"max_stock"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// AdjustStockRequest body for POST /api/stock/items/:id/adjustments.
// Quantity positivity is enforced by the adjustment engine; the closed
// reason enum is validated here at the boundary.
type AdjustStockRequest struct {
	Operation string          `json:"operation" validate:"required,oneof=add remove"`
	Quantity  decimal.Decimal `json:"quantity"`
	Reason    string          `json:"reason" validate:"required,oneof=purchase sale spoilage manual_adjustment inventory_count return damage theft expired restock"`
	Notes     string          `json:"notes" validate:"omitempty,max=500"`
}

// ListItemsRequest query params for GET /api/stock/items.
type ListItemsRequest struct {
	Kind   string `query:"kind" validate:"omitempty,oneof=product ingredient"`
	Status string `query:"status" validate:"omitempty,oneof=ok low out"`
	Active *bool  `query:"active"`
	PageRequest
}

// StockItemResponse is a StockItem enriched with derived status and value.
type StockItemResponse struct {
	ID              string          `json:"id"`
	Kind            string          `json:"kind"`
	Name            string          `json:"name"`
	Unit            string          `json:"unit"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	MinStock        decimal.Decimal `json:"min_stock"`
	MaxStock        decimal.Decimal `json:"max_stock"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	Status          string          `json:"status"`
	TotalValue      decimal.Decimal `json:"total_value"`
	LastRestockedAt *time.Time      `json:"last_restocked_at,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AdjustmentResponse is one ledger entry.
type AdjustmentResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	Operation     string          `json:"operation"`
	Quantity      decimal.Decimal `json:"quantity"`
	Reason        string          `json:"reason"`
	Notes         string          `json:"notes,omitempty"`
	PreviousStock decimal.Decimal `json:"previous_stock"`
	NewStock      decimal.Decimal `json:"new_stock"`
	ActorID       string          `json:"actor_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// HistoryResponse is the paginated ledger for one item.
type HistoryResponse struct {
	Page    PageResponse         `json:"page"`
	Records []AdjustmentResponse `json:"records"`
}

// ValuationResponse is the aggregate catalog value.
type ValuationResponse struct {
	TotalValue decimal.Decimal `json:"total_value"`
	ItemCount  int             `json:"item_count"`
}

// NewStockItemResponse maps an enriched item to its response shape.
func NewStockItemResponse(v stock.ItemWithHealth) StockItemResponse {
	it := v.Item
	return StockItemResponse{
		ID:              it.ID,
		Kind:            it.Kind,
		Name:            it.Name,
		Unit:            it.Unit,
		CurrentStock:    it.CurrentStock,
		MinStock:        it.MinStock,
		MaxStock:        it.MaxStock,
		UnitCost:        it.UnitCost,
		Status:          v.Status,
		TotalValue:      v.TotalValue,
		LastRestockedAt: it.LastRestockedAt,
		IsActive:        it.IsActive,
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

// NewAdjustmentResponse maps a ledger entry to its response shape.
func NewAdjustmentResponse(r *entity.AdjustmentRecord) AdjustmentResponse {
	return AdjustmentResponse{
		ID:            r.ID,
		ItemID:        r.ItemID,
		Operation:     r.Operation,
		Quantity:      r.Quantity,
		Reason:        r.Reason,
		Notes:         r.Notes,
		PreviousStock: r.PreviousStock,
		NewStock:      r.NewStock,
		ActorID:       r.ActorID,
		CreatedAt:     r.CreatedAt,
	}
}
