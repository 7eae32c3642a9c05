package repository

import (
	"context"
	"sort"
	"sync"

	"finance_webapp/internal/domain"
)

// MemoryTransactionRepository keeps the table in process memory. Records are
// copied on the way in and out so callers never share state with the store.
type MemoryTransactionRepository struct {
	mu    sync.RWMutex
	items map[string]map[string]domain.Transaction // PK -> SK -> record
}

func NewMemoryTransactionRepository() *MemoryTransactionRepository {
	return &MemoryTransactionRepository{items: make(map[string]map[string]domain.Transaction)}
}

func (r *MemoryTransactionRepository) Get(_ context.Context, userID, sortKey string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tx, ok := r.items[BuildPrimaryKey(userID)][sortKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &tx, nil
}

func (r *MemoryTransactionRepository) Put(_ context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	partition, ok := r.items[tx.PK]
	if !ok {
		partition = make(map[string]domain.Transaction)
		r.items[tx.PK] = partition
	}
	partition[tx.SK] = *tx
	return nil
}

func (r *MemoryTransactionRepository) UpdateFields(_ context.Context, userID, sortKey string, patch domain.TransactionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	partition := r.items[BuildPrimaryKey(userID)]
	tx, ok := partition[sortKey]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Description != nil {
		tx.Description = *patch.Description
	}
	if patch.Mode != nil {
		tx.Mode = *patch.Mode
		tx.GSI3PK = ProjectionKey(ProjectionMode, userID, string(tx.Mode))
	}
	if patch.AmountCents != nil {
		tx.AmountCents = *patch.AmountCents
	}
	if patch.Currency != nil {
		tx.Currency = *patch.Currency
	}
	partition[sortKey] = tx
	return nil
}

func (r *MemoryTransactionRepository) Delete(_ context.Context, userID, sortKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	partition := r.items[BuildPrimaryKey(userID)]
	if _, ok := partition[sortKey]; !ok {
		return false, nil
	}
	delete(partition, sortKey)
	return true, nil
}

func (r *MemoryTransactionRepository) QueryByPrimary(_ context.Context, userID string, opts QueryOptions) (domain.Page, error) {
	pk := BuildPrimaryKey(userID)
	after, err := decodeCursor(opts.Cursor, attrPK, pk)
	if err != nil {
		return domain.Page{}, err
	}

	r.mu.RLock()
	matched := make([]domain.Transaction, 0, len(r.items[pk]))
	for _, tx := range r.items[pk] {
		matched = append(matched, tx)
	}
	r.mu.RUnlock()

	return paginate(matched, after, opts, ""), nil
}

func (r *MemoryTransactionRepository) QueryByProjection(_ context.Context, p Projection, projectionKey string, opts QueryOptions) (domain.Page, error) {
	pkAttr, _ := p.attributes()
	after, err := decodeCursor(opts.Cursor, pkAttr, projectionKey)
	if err != nil {
		return domain.Page{}, err
	}

	r.mu.RLock()
	var matched []domain.Transaction
	for _, partition := range r.items {
		for _, tx := range partition {
			if projectionPK(&tx, p) == projectionKey {
				matched = append(matched, tx)
			}
		}
	}
	r.mu.RUnlock()

	return paginate(matched, after, opts, p), nil
}

func (r *MemoryTransactionRepository) Ping(context.Context) error {
	return nil
}

// paginate sorts by sort key, skips past the cursor and cuts one page.
func paginate(items []domain.Transaction, after map[string]string, opts QueryOptions, p Projection) domain.Page {
	sort.Slice(items, func(i, j int) bool {
		if opts.Descending {
			return items[i].SK > items[j].SK
		}
		return items[i].SK < items[j].SK
	})

	if after != nil {
		start := len(items)
		for i, tx := range items {
			if (opts.Descending && tx.SK < after[attrSK]) || (!opts.Descending && tx.SK > after[attrSK]) {
				start = i
				break
			}
		}
		items = items[start:]
	}

	page := domain.Page{Items: make([]*domain.Transaction, 0, len(items))}
	for i := range items {
		if opts.Limit > 0 && len(page.Items) == opts.Limit {
			page.NextCursor = cursorFor(page.Items[len(page.Items)-1], p)
			break
		}
		page.Items = append(page.Items, &items[i])
	}
	return page
}
