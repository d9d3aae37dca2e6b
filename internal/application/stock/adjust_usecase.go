package stock

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/inventory-api/internal/domain"
	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
	"github.com/tavolo-pos/inventory-api/internal/domain/repository"
	"github.com/tavolo-pos/inventory-api/internal/domain/stock"
)

// AdjustInput carries one adjustment request into the engine.
type AdjustInput struct {
	ItemID    string
	Operation string
	Quantity  decimal.Decimal
	Reason    string
	Notes     string
	ActorID   string
}

// ItemWithHealth is a StockItem enriched with its derived status and value.
type ItemWithHealth struct {
	Item       *entity.StockItem
	Status     string
	TotalValue decimal.Decimal
}

// AdjustUseCase is the only legal way to change an item's quantity. It
// serializes access per item (row lock inside the transaction), writes the
// new quantity and the ledger entry atomically, and retries transient
// conflicts with capped backoff before surfacing them.
type AdjustUseCase struct {
	txRunner   TxRunner
	classifier stock.Classifier
	metrics    Metrics

	maxRetries uint64
	backoff    time.Duration
	timeout    time.Duration
}

// AdjustConfig tunes the retry budget and the per-request timeout.
type AdjustConfig struct {
	MaxRetries uint64
	Backoff    time.Duration
	Timeout    time.Duration
}

// NewAdjustUseCase builds the adjustment engine.
func NewAdjustUseCase(txRunner TxRunner, classifier stock.Classifier, metrics Metrics, cfg AdjustConfig) *AdjustUseCase {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 50 * time.Millisecond
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &AdjustUseCase{
		txRunner:   txRunner,
		classifier: classifier,
		metrics:    metrics,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		timeout:    cfg.Timeout,
	}
}

// Adjust validates the request, applies it as one atomic unit and returns
// the refreshed item with derived status and value. A failed adjustment
// leaves both the catalog and the ledger untouched.
func (uc *AdjustUseCase) Adjust(ctx context.Context, input AdjustInput) (ItemWithHealth, error) {
	if err := uc.validate(&input); err != nil {
		uc.metrics.AdjustmentRejected(rejectionCause(err))
		return ItemWithHealth{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	var updated *entity.StockItem
	b := retry.WithMaxRetries(uc.maxRetries, retry.NewFibonacci(uc.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := uc.applyOnce(ctx, input, &updated)
		if errors.Is(err, domain.ErrConflict) {
			uc.metrics.ConflictRetried()
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		// Retry budget exhausted on the last attempt's conflict, or the
		// request timeout fired while waiting for the row lock.
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, context.DeadlineExceeded) {
			err = domain.ErrConflict
		}
		uc.metrics.AdjustmentRejected(rejectionCause(err))
		return ItemWithHealth{}, err
	}

	uc.metrics.AdjustmentApplied(input.Operation, input.Reason)
	return uc.enrich(updated), nil
}

func (uc *AdjustUseCase) validate(input *AdjustInput) error {
	if input.ItemID == "" || input.ActorID == "" {
		return domain.ErrInvalidInput
	}
	if !entity.ValidOperation(input.Operation) {
		return domain.ErrInvalidInput
	}
	if !entity.ValidReason(input.Reason) {
		return domain.ErrInvalidInput
	}
	input.Notes = strings.TrimSpace(input.Notes)
	if len(input.Notes) > entity.MaxNotesLength {
		return domain.ErrInvalidInput
	}
	if !input.Quantity.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	return nil
}

// applyOnce runs one attempt of the read-modify-write inside a transaction.
// The row lock taken by GetForUpdate is the per-item critical section; two
// different items never block each other.
func (uc *AdjustUseCase) applyOnce(ctx context.Context, input AdjustInput, updated **entity.StockItem) error {
	return uc.txRunner.Run(ctx, func(
		items repository.StockItemRepository,
		ledger repository.AdjustmentRepository,
	) error {
		item, err := items.GetForUpdate(ctx, input.ItemID)
		if err != nil {
			return err
		}
		if !item.IsActive {
			return domain.ErrNotFound
		}

		previous := item.CurrentStock
		var newStock decimal.Decimal
		switch input.Operation {
		case entity.OperationAdd:
			newStock = previous.Add(input.Quantity)
		case entity.OperationRemove:
			newStock = previous.Sub(input.Quantity)
			// Never clamp silently: a remove that would go negative fails
			// with nothing written.
			if newStock.IsNegative() {
				return domain.ErrInsufficientStock
			}
		}

		now := time.Now().UTC()
		var restockedAt *time.Time
		if input.Operation == entity.OperationAdd && isRestockReason(input.Reason) {
			restockedAt = &now
		}
		if err := items.SetQuantity(ctx, item.ID, newStock, restockedAt); err != nil {
			return err
		}
		record := &entity.AdjustmentRecord{
			ID:            uuid.New().String(),
			ItemID:        item.ID,
			Operation:     input.Operation,
			Quantity:      input.Quantity,
			Reason:        input.Reason,
			Notes:         input.Notes,
			PreviousStock: previous,
			NewStock:      newStock,
			ActorID:       input.ActorID,
			CreatedAt:     now,
		}
		if err := ledger.Append(ctx, record); err != nil {
			return err
		}

		item.CurrentStock = newStock
		item.UpdatedAt = now
		if restockedAt != nil {
			item.LastRestockedAt = restockedAt
		}
		*updated = item
		return nil
	})
}

func (uc *AdjustUseCase) enrich(item *entity.StockItem) ItemWithHealth {
	return ItemWithHealth{
		Item:       item,
		Status:     uc.classifier.Classify(item.CurrentStock, item.MinStock),
		TotalValue: stock.TotalValue(item.CurrentStock, item.UnitCost),
	}
}

func isRestockReason(reason string) bool {
	return reason == entity.ReasonPurchase || reason == entity.ReasonRestock
}

// rejectionCause labels an error for the rejection counter.
func rejectionCause(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "persistence"
	}
}
