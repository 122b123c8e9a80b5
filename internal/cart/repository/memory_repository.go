package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Tokarsky98/GroceryMartAI/internal/cart/domain"
)

// MemoryRepository is the default cart store when no MongoDB is
// configured.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{carts: make(map[string]*domain.Cart)}
}

func (r *MemoryRepository) GetCart(_ context.Context, key string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[key]
	if !ok {
		return nil, ErrCartNotFound
	}
	cp := *cart
	cp.Items = append([]domain.CartItem(nil), cart.Items...)
	return &cp, nil
}

func (r *MemoryRepository) SetItemQuantity(_ context.Context, key string, productID int64, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cart, ok := r.carts[key]
	if !ok {
		cart = &domain.Cart{Key: key, CreatedAt: now}
		r.carts[key] = cart
	}
	cart.UpdatedAt = now

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			return nil
		}
	}
	cart.Items = append(cart.Items, domain.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   now,
	})
	return nil
}

func (r *MemoryRepository) RemoveItem(_ context.Context, key string, productID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[key]
	if !ok {
		return ErrCartNotFound
	}
	for i, item := range cart.Items {
		if item.ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			cart.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrItemNotFound
}

func (r *MemoryRepository) DeleteCart(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[key]; !ok {
		return ErrCartNotFound
	}
	delete(r.carts, key)
	return nil
}
