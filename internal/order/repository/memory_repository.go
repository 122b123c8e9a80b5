package repository

import (
	"context"
	"sync"

	"github.com/Tokarsky98/GroceryMartAI/internal/order/domain"
	"github.com/google/uuid"
)

// MemoryRepository is the default order ledger when no Postgres is
// configured. Append-only; orders are returned newest first.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders []*domain.Order
	byID   map[uuid.UUID]*domain.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[uuid.UUID]*domain.Order)}
}

func (r *MemoryRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *order
	cp.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders = append(r.orders, &cp)
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.byID[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *MemoryRepository) ListOrdersByUserID(_ context.Context, userID int64) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			cp := *r.orders[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Close() error { return nil }
