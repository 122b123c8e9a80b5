package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Tokarsky98/GroceryMartAI/internal/catalog/domain"
)

// MemoryRepository is the default product store when no database is
// configured. Products are kept in insertion order.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*domain.Product
	order  []int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		byID:   make(map[int64]*domain.Product),
	}
}

func (r *MemoryRepository) GetAll(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		p := *r.byID[id]
		out = append(out, &p)
	}
	return out, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) Create(_ context.Context, p *domain.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *p
	cp.ID = r.nextID
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.nextID++
	r.byID[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return cp.ID, nil
}

func (r *MemoryRepository) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[p.ID]
	if !ok {
		return ErrProductNotFound
	}
	cp := *p
	cp.CreatedAt = existing.CreatedAt
	r.byID[p.ID] = &cp
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrProductNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) Close() error { return nil }
