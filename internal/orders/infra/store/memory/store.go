// Package memory implements ports.OrderStore on a map guarded by a
// RWMutex. It backs tests and local development; semantics match the
// SQLite adapter, including newest-first ordering and post-filter
// pagination.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/selliq/order-engine/internal/orders/core/domain/entity"
	"github.com/selliq/order-engine/internal/orders/core/ports"
)

// Store is an in-memory ports.OrderStore. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*entity.Order
}

func New() *Store {
	return &Store{orders: make(map[string]*entity.Order)}
}

// Create stores a copy of the order, assigning its ID if empty.
func (s *Store) Create(ctx context.Context, o *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	s.orders[o.ID] = o.Clone()
	return nil
}

// FindByID returns a copy of the order, or ports.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return o.Clone(), nil
}

// FindByQuery returns matching orders newest first.
func (s *Store) FindByQuery(ctx context.Context, q ports.Query) ([]*entity.Order, error) {
	matched := s.match(q)

	if q.Limit > 0 {
		off := q.Offset()
		if off >= len(matched) {
			return nil, nil
		}
		end := off + q.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[off:end]
	}
	return matched, nil
}

// Count returns the number of matching orders, ignoring pagination.
func (s *Store) Count(ctx context.Context, q ports.Query) (int64, error) {
	return int64(len(s.match(q))), nil
}

// Update overwrites the stored document, or returns ports.ErrNotFound.
func (s *Store) Update(ctx context.Context, o *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[o.ID]; !ok {
		return ports.ErrNotFound
	}
	s.orders[o.ID] = o.Clone()
	return nil
}

func (s *Store) match(q ports.Query) []*entity.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*entity.Order
	for _, o := range s.orders {
		if q.CustomerID != "" && o.CustomerID != q.CustomerID {
			continue
		}
		if q.SellerID != "" && !o.HasSellerItem(q.SellerID) {
			continue
		}
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
