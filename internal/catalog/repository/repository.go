package repository

import (
	"context"
	"errors"

	"github.com/Tokarsky98/GroceryMartAI/internal/catalog/domain"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository defines the interface for product storage. Consumers
// define this interface, not the storage implementation.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) (int64, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	Close() error
}
