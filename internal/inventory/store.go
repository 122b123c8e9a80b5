// Package inventory holds the authoritative stock and price figures for
// every product in the catalog. Cart operations read it to enforce the
// stock ceiling; order placement goes through Reserve, the only code path
// that decrements stock.
package inventory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

var ErrProductNotFound = errors.New("product not found")

// InsufficientStockError reports how much stock was actually available so
// callers can surface it to the user.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Line is a reservation request for a single product.
type Line struct {
	ProductID int64
	Quantity  int
}

// ReservedLine is a committed reservation line with the unit price read
// in the same critical section that decremented the stock.
type ReservedLine struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

type stockEntry struct {
	stock int
	price decimal.Decimal
}

// Store is an in-memory inventory keyed by product id. All methods are
// safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]*stockEntry
}

func NewStore() *Store {
	return &Store{entries: make(map[int64]*stockEntry)}
}

// GetStock returns the currently available quantity for a product.
func (s *Store) GetStock(productID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[productID]
	if !ok {
		return 0, ErrProductNotFound
	}
	return e.stock, nil
}

// GetPrice returns the current unit price for a product.
func (s *Store) GetPrice(productID int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[productID]
	if !ok {
		return decimal.Decimal{}, ErrProductNotFound
	}
	return e.price, nil
}

// Reserve atomically checks and decrements stock for every line. Either
// all lines are reserved or none are: the first line that cannot be
// satisfied aborts the whole call with no stock touched. The returned
// lines carry the unit price captured under the same lock, which is the
// authoritative price for the order being placed.
func (s *Store) Reserve(lines []Line) ([]ReservedLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate every line against current stock.
	for _, l := range lines {
		e, ok := s.entries[l.ProductID]
		if !ok {
			return nil, fmt.Errorf("reserve product %d: %w", l.ProductID, ErrProductNotFound)
		}
		if l.Quantity > e.stock {
			return nil, &InsufficientStockError{
				ProductID: l.ProductID,
				Requested: l.Quantity,
				Available: e.stock,
			}
		}
	}

	// Second pass: decrement and capture prices.
	reserved := make([]ReservedLine, len(lines))
	for i, l := range lines {
		e := s.entries[l.ProductID]
		e.stock -= l.Quantity
		reserved[i] = ReservedLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: e.price,
		}
	}
	return reserved, nil
}

// Release returns previously reserved quantities to the available pool.
// Used to compensate when order recording fails after a successful
// reservation. Lines for products no longer in the catalog are dropped.
func (s *Store) Release(lines []ReservedLine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range lines {
		if e, ok := s.entries[l.ProductID]; ok {
			e.stock += l.Quantity
		}
	}
}

// SetStock sets the available quantity for a product, creating the entry
// if needed. Used by the catalog on product create/update.
func (s *Store) SetStock(productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[productID]; ok {
		e.stock = quantity
		return
	}
	s.entries[productID] = &stockEntry{stock: quantity}
}

// SetPrice sets the unit price for a product, creating the entry if needed.
func (s *Store) SetPrice(productID int64, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[productID]; ok {
		e.price = price
		return
	}
	s.entries[productID] = &stockEntry{price: price}
}

// Delete removes a product from the inventory. Used by the catalog on
// product delete; idempotent.
func (s *Store) Delete(productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, productID)
}
