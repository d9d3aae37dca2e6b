package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Adjustment operations.
const (
	OperationAdd    = "add"
	OperationRemove = "remove"
)

// ValidOperation reports whether op is a known adjustment operation.
func ValidOperation(op string) bool {
	return op == OperationAdd || op == OperationRemove
}

// Closed set of business reasons attached to every adjustment.
const (
	ReasonPurchase         = "purchase"
	ReasonSale             = "sale"
	ReasonSpoilage         = "spoilage"
	ReasonManualAdjustment = "manual_adjustment"
	ReasonInventoryCount   = "inventory_count"
	ReasonReturn           = "return"
	ReasonDamage           = "damage"
	ReasonTheft            = "theft"
	ReasonExpired          = "expired"
	ReasonRestock          = "restock"
)

var adjustmentReasons = map[string]struct{}{
	ReasonPurchase:         {},
	ReasonSale:             {},
	ReasonSpoilage:         {},
	ReasonManualAdjustment: {},
	ReasonInventoryCount:   {},
	ReasonReturn:           {},
	ReasonDamage:           {},
	ReasonTheft:            {},
	ReasonExpired:          {},
	ReasonRestock:          {},
}

// ValidReason reports whether reason belongs to the closed enum. Client
// strings are validated at the request boundary, never trusted.
func ValidReason(reason string) bool {
	_, ok := adjustmentReasons[reason]
	return ok
}

// MaxNotesLength bounds the optional free-text notes on an adjustment.
const MaxNotesLength = 500

// AdjustmentRecord is one immutable ledger entry. Records are never updated
// or deleted; replaying them in CreatedAt order reproduces CurrentStock.
type AdjustmentRecord struct {
	ID            string
	ItemID        string
	Operation     string
	Quantity      decimal.Decimal
	Reason        string
	Notes         string
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	ActorID       string
	CreatedAt     time.Time
}
