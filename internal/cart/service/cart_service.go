package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tokarsky98/GroceryMartAI/internal/cart/cache"
	"github.com/Tokarsky98/GroceryMartAI/internal/cart/domain"
	"github.com/Tokarsky98/GroceryMartAI/internal/cart/repository"
	"github.com/Tokarsky98/GroceryMartAI/internal/inventory"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// InventoryView is the read-only slice of the inventory the cart needs.
// Cart operations check stock, they never reserve it; reservation happens
// once, at order placement.
type InventoryView interface {
	GetStock(productID int64) (int, error)
	GetPrice(productID int64) (decimal.Decimal, error)
}

type CartService struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	inv    InventoryView
	logger *slog.Logger
	sfg    singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache, inv InventoryView, logger *slog.Logger) *CartService {
	return &CartService{
		repo:   repo,
		cache:  cache,
		inv:    inv,
		logger: logger,
	}
}

// GetCart returns the cart for the key, an empty cart when none exists.
func (s *CartService) GetCart(ctx context.Context, key string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(key, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, key)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "cache get error", "error", err)
		}

		cart, errGet := s.repo.GetCart(ctx, key)
		if errors.Is(errGet, repository.ErrCartNotFound) {
			return &domain.Cart{
				Key:       key,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// Fill the cache before returning so a later invalidation can't
		// be overtaken by a stale write.
		if errSet := s.cache.Set(ctx, key, cart); errSet != nil {
			s.logger.WarnContext(ctx, "cache set error", "error", errSet)
		}

		return cart, nil
	})

	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

// AddItem increments the line for the product by delta, creating it when
// absent. The prospective line total is validated against current stock;
// on failure the cart is left untouched.
func (s *CartService) AddItem(ctx context.Context, key string, productID int64, delta int) error {
	if delta <= 0 {
		return ErrInvalidQuantity
	}

	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	prospective := cart.Quantity(productID) + delta
	if err := s.checkStock(productID, prospective); err != nil {
		return err
	}

	if err := s.repo.SetItemQuantity(ctx, key, productID, prospective); err != nil {
		return fmt.Errorf("add item: %w", err)
	}

	s.invalidateCache(key)
	return nil
}

// SetQuantity replaces the line's quantity. A non-positive quantity
// removes the line, which is a no-op when the line is absent.
func (s *CartService) SetQuantity(ctx context.Context, key string, productID int64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, key, productID)
	}

	if err := s.checkStock(productID, quantity); err != nil {
		return err
	}

	if err := s.repo.SetItemQuantity(ctx, key, productID, quantity); err != nil {
		return fmt.Errorf("set quantity: %w", err)
	}

	s.invalidateCache(key)
	return nil
}

// RemoveItem drops the line if present; removing an absent line is not an
// error.
func (s *CartService) RemoveItem(ctx context.Context, key string, productID int64) error {
	err := s.repo.RemoveItem(ctx, key, productID)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) && !errors.Is(err, repository.ErrItemNotFound) {
		return fmt.Errorf("remove item: %w", err)
	}

	s.invalidateCache(key)
	return nil
}

// Clear empties the cart; clearing an absent cart is not an error.
func (s *CartService) Clear(ctx context.Context, key string) error {
	err := s.repo.DeleteCart(ctx, key)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.invalidateCache(key)
	return nil
}

// Total sums quantity times the current unit price over the cart. The
// figure is advisory: prices may change between viewing and purchase, and
// the order ledger recomputes from its own reservation.
func (s *CartService) Total(ctx context.Context, key string) (decimal.Decimal, error) {
	cart, err := s.GetCart(ctx, key)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("cart total: %w", err)
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		price, err := s.inv.GetPrice(item.ProductID)
		if err != nil {
			// Product gone from the catalog: it can't be bought, so it
			// doesn't count.
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

// Merge folds the cart under fromKey into the cart under toKey, then
// discards the source. Ran once per login, moving the guest-session cart
// onto the user's. Quantities for the same product are summed and capped
// to current stock; a capped or unsellable line never fails the merge,
// and lines merge independently.
func (s *CartService) Merge(ctx context.Context, fromKey, toKey string) error {
	src, err := s.repo.GetCart(ctx, fromKey)
	if errors.Is(err, repository.ErrCartNotFound) {
		return nil // nothing to merge
	}
	if err != nil {
		return fmt.Errorf("merge cart: %w", err)
	}

	dst, err := s.GetCart(ctx, toKey)
	if err != nil {
		return fmt.Errorf("merge cart: %w", err)
	}

	for _, item := range src.Items {
		stock, err := s.inv.GetStock(item.ProductID)
		if err != nil {
			s.logger.WarnContext(ctx, "merge skips unknown product",
				"product_id", item.ProductID, "error", err)
			continue
		}

		merged := dst.Quantity(item.ProductID) + item.Quantity
		if merged > stock {
			merged = stock // excess silently truncated
		}
		if merged <= 0 {
			continue
		}

		if err := s.repo.SetItemQuantity(ctx, toKey, item.ProductID, merged); err != nil {
			s.logger.ErrorContext(ctx, "merge failed for line",
				"product_id", item.ProductID, "error", err)
		}
	}

	if err := s.repo.DeleteCart(ctx, fromKey); err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		s.logger.ErrorContext(ctx, "failed to discard merged cart", "key", fromKey, "error", err)
	}

	s.invalidateCache(fromKey)
	s.invalidateCache(toKey)
	return nil
}

func (s *CartService) checkStock(productID int64, quantity int) error {
	stock, err := s.inv.GetStock(productID)
	if err != nil {
		return err
	}
	if quantity > stock {
		return &inventory.InsufficientStockError{
			ProductID: productID,
			Requested: quantity,
			Available: stock,
		}
	}
	return nil
}

func (s *CartService) invalidateCache(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("cache invalidate error", "error", err)
	}
}
