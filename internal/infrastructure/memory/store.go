// Package memory is an in-memory implementation of the stock ports with
// real transactional semantics: per-item row locks, buffered writes and
// commit/rollback. It backs the use case tests and the no-Postgres dev mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tavolo-pos/inventory-api/internal/application/stock"
	"github.com/tavolo-pos/inventory-api/internal/domain"
	"github.com/tavolo-pos/inventory-api/internal/domain/entity"
	"github.com/tavolo-pos/inventory-api/internal/domain/repository"
)

// Store holds the committed state. Reads go straight to committed state
// under an RWMutex; mutations only happen through Run.
type Store struct {
	mu     sync.RWMutex
	items  map[string]entity.StockItem
	names  map[string]string // kind + "\x00" + name -> item id
	ledger map[string][]entity.AdjustmentRecord

	lockMu sync.Mutex
	locks  map[string]chan struct{} // per-item row locks
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		items:  make(map[string]entity.StockItem),
		names:  make(map[string]string),
		ledger: make(map[string][]entity.AdjustmentRecord),
		locks:  make(map[string]chan struct{}),
	}
}

var _ stock.TxRunner = (*Store)(nil)

// Run executes fn with tx-bound repositories. Writes are buffered and
// applied only when fn returns nil; row locks taken via GetForUpdate are
// held until Run returns, which is what serializes adjustments per item.
func (s *Store) Run(ctx context.Context, fn func(
	items repository.StockItemRepository,
	ledger repository.AdjustmentRepository,
) error) error {
	tx := &memTx{store: s}
	defer tx.releaseLocks()

	if err := fn(&itemRepo{tx: tx}, &ledgerRepo{tx: tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Items returns a pool-bound (committed-state) item repository.
func (s *Store) Items() repository.StockItemRepository {
	return &itemRepo{tx: &memTx{store: s, readOnly: true}}
}

// Ledger returns a pool-bound (committed-state) ledger repository.
func (s *Store) Ledger() repository.AdjustmentRepository {
	return &ledgerRepo{tx: &memTx{store: s, readOnly: true}}
}

// rowLock acquires the per-item lock, honoring ctx cancellation so a
// blocked adjustment times out instead of waiting forever.
func (s *Store) rowLock(ctx context.Context, id string) error {
	s.lockMu.Lock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	s.lockMu.Unlock()

	select {
	case ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return domain.ErrConflict
	}
}

func (s *Store) rowUnlock(id string) {
	s.lockMu.Lock()
	ch := s.locks[id]
	s.lockMu.Unlock()
	<-ch
}

// memTx buffers writes until commit.
type memTx struct {
	store    *Store
	readOnly bool

	held    []string // row locks to release
	items   []entity.StockItem
	records []entity.AdjustmentRecord
}

func (tx *memTx) commit() {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range tx.items {
		s.items[it.ID] = it
		s.names[nameKey(it.Kind, it.Name)] = it.ID
	}
	for _, r := range tx.records {
		s.ledger[r.ItemID] = append(s.ledger[r.ItemID], r)
	}
	tx.items = nil
	tx.records = nil
}

func (tx *memTx) releaseLocks() {
	for _, id := range tx.held {
		tx.store.rowUnlock(id)
	}
	tx.held = nil
}

// pending returns the buffered version of an item, if any.
func (tx *memTx) pending(id string) (entity.StockItem, bool) {
	for i := len(tx.items) - 1; i >= 0; i-- {
		if tx.items[i].ID == id {
			return tx.items[i], true
		}
	}
	return entity.StockItem{}, false
}

func nameKey(kind, name string) string { return kind + "\x00" + name }

type itemRepo struct {
	tx *memTx
}

var _ repository.StockItemRepository = (*itemRepo)(nil)

func (r *itemRepo) GetByID(ctx context.Context, id string) (*entity.StockItem, error) {
	if it, ok := r.tx.pending(id); ok {
		cp := it
		return &cp, nil
	}
	s := r.tx.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := it
	return &cp, nil
}

func (r *itemRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockItem, error) {
	if r.tx.readOnly {
		return nil, domain.ErrPersistence
	}
	if err := r.tx.store.rowLock(ctx, id); err != nil {
		return nil, err
	}
	r.tx.held = append(r.tx.held, id)
	return r.GetByID(ctx, id)
}

func (r *itemRepo) List(ctx context.Context, filter repository.ItemFilter) ([]*entity.StockItem, error) {
	s := r.tx.store
	s.mu.RLock()
	all := make([]entity.StockItem, 0, len(s.items))
	for _, it := range s.items {
		all = append(all, it)
	}
	s.mu.RUnlock()

	// Stable order for pagination: name, then id as a tiebreaker.
	sort.Slice(all, func(i, j int) bool {
		if all[i].Name != all[j].Name {
			return all[i].Name < all[j].Name
		}
		return all[i].ID < all[j].ID
	})

	out := make([]*entity.StockItem, 0, len(all))
	for i := range all {
		it := all[i]
		if filter.Kind != "" && it.Kind != filter.Kind {
			continue
		}
		if filter.Active != nil && it.IsActive != *filter.Active {
			continue
		}
		out = append(out, &it)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []*entity.StockItem{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *itemRepo) Create(ctx context.Context, item *entity.StockItem) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.names[nameKey(item.Kind, item.Name)]; exists {
		return domain.ErrDuplicate
	}
	s.items[item.ID] = *item
	s.names[nameKey(item.Kind, item.Name)] = item.ID
	return nil
}

func (r *itemRepo) SetQuantity(ctx context.Context, id string, quantity decimal.Decimal, restockedAt *time.Time) error {
	it, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	it.CurrentStock = quantity
	it.UpdatedAt = time.Now().UTC()
	if restockedAt != nil {
		it.LastRestockedAt = restockedAt
	}
	if r.tx.readOnly {
		return domain.ErrPersistence
	}
	r.tx.items = append(r.tx.items, *it)
	return nil
}

func (r *itemRepo) Deactivate(ctx context.Context, id string) error {
	s := r.tx.store
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.IsActive = false
	it.UpdatedAt = time.Now().UTC()
	s.items[id] = it
	return nil
}

type ledgerRepo struct {
	tx *memTx
}

var _ repository.AdjustmentRepository = (*ledgerRepo)(nil)

func (r *ledgerRepo) Append(ctx context.Context, record *entity.AdjustmentRecord) error {
	if r.tx.readOnly {
		return domain.ErrPersistence
	}
	r.tx.records = append(r.tx.records, *record)
	return nil
}

func (r *ledgerRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.AdjustmentRecord, error) {
	s := r.tx.store
	s.mu.RLock()
	src := s.ledger[itemID]
	all := make([]entity.AdjustmentRecord, len(src))
	copy(all, src)
	s.mu.RUnlock()

	// Reverse-chronological: the slice is in append order.
	out := make([]*entity.AdjustmentRecord, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i]
		out = append(out, &rec)
	}
	if offset > 0 {
		if offset >= len(out) {
			return []*entity.AdjustmentRecord{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *ledgerRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	s := r.tx.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledger[itemID]), nil
}
