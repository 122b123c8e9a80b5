package repository

import (
	"context"
	"errors"

	"github.com/Tokarsky98/GroceryMartAI/internal/cart/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// CartRepository defines the interface for cart data operations.
// Consumers define this interface, not the storage implementation.
type CartRepository interface {
	// GetCart returns the cart for the given key, or ErrCartNotFound.
	GetCart(ctx context.Context, key string) (*domain.Cart, error)

	// SetItemQuantity stores the given quantity for a product line,
	// creating the cart and/or line as needed. Quantity must be positive;
	// validation happens in the service.
	SetItemQuantity(ctx context.Context, key string, productID int64, quantity int) error

	// RemoveItem drops the product line. Returns ErrCartNotFound or
	// ErrItemNotFound when there is nothing to drop.
	RemoveItem(ctx context.Context, key string, productID int64) error

	// DeleteCart removes the whole cart. Returns ErrCartNotFound when
	// absent.
	DeleteCart(ctx context.Context, key string) error
}
