// Package service implements the order ledger: the single place where a
// cart becomes an immutable order. Reservation here is authoritative; the
// best-effort stock checks done at cart time carry no weight.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	cartdomain "github.com/Tokarsky98/GroceryMartAI/internal/cart/domain"
	"github.com/Tokarsky98/GroceryMartAI/internal/inventory"
	"github.com/Tokarsky98/GroceryMartAI/internal/order/domain"
	"github.com/Tokarsky98/GroceryMartAI/internal/order/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to order")

// CartReader is the slice of the cart service the ledger needs: read the
// cart to convert, clear it once the order is recorded.
type CartReader interface {
	GetCart(ctx context.Context, key string) (*cartdomain.Cart, error)
	Clear(ctx context.Context, key string) error
}

// StockReserver performs the atomic all-or-nothing check-and-decrement
// across every order line.
type StockReserver interface {
	Reserve(lines []inventory.Line) ([]inventory.ReservedLine, error)
	Release(lines []inventory.ReservedLine)
}

// EventPublisher notifies downstream systems of a placed order.
// Best-effort; failures are logged, never surfaced.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
}

type Ledger struct {
	repo      repository.OrderRepository
	carts     CartReader
	stock     StockReserver
	publisher EventPublisher
	logger    *slog.Logger
}

func NewLedger(repo repository.OrderRepository, carts CartReader, stock StockReserver, publisher EventPublisher, logger *slog.Logger) *Ledger {
	return &Ledger{
		repo:      repo,
		carts:     carts,
		stock:     stock,
		publisher: publisher,
		logger:    logger,
	}
}

// PlaceOrder converts the cart under cartKey into an order owned by
// userID. Stock for every line is reserved atomically; if any line cannot
// be satisfied the whole call fails with no stock decremented and the
// cart untouched. Prices come from the reservation, never from the
// client. On success the order is recorded, the cart cleared, and an
// order.placed event emitted.
func (l *Ledger) PlaceOrder(
	ctx context.Context,
	cartKey string,
	userID int64,
	shipping domain.ShippingInfo,
	payment domain.PaymentSummary,
	delivery domain.DeliveryOption,
) (*domain.Order, error) {

	cart, err := l.carts.GetCart(ctx, cartKey)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]inventory.Line, len(cart.Items))
	for i, item := range cart.Items {
		lines[i] = inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	reserved, err := l.stock.Reserve(lines)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, len(reserved))
	total := delivery.Fee()
	for i, line := range reserved {
		items[i] = domain.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
		total = total.Add(items[i].Subtotal())
	}

	order := &domain.Order{
		ID:        uuid.New(),
		CartKey:   cartKey,
		UserID:    userID,
		Items:     items,
		Shipping:  shipping,
		Payment:   payment,
		Delivery:  delivery,
		Total:     total,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now(),
	}

	if err := l.repo.CreateOrder(ctx, order); err != nil {
		// Hand the reserved stock back; the order does not exist.
		l.stock.Release(reserved)
		return nil, fmt.Errorf("record order: %w", err)
	}

	if err := l.carts.Clear(ctx, cartKey); err != nil {
		l.logger.ErrorContext(ctx, "order recorded but cart clear failed",
			"order_id", order.ID, "cart_key", cartKey, "error", err)
	}

	if err := l.publisher.PublishOrderPlaced(ctx, order); err != nil {
		l.logger.WarnContext(ctx, "failed to publish order event",
			"order_id", order.ID, "error", err)
	}

	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (l *Ledger) ListOrders(ctx context.Context, userID int64) ([]*domain.Order, error) {
	orders, err := l.repo.ListOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns the order only when it belongs to the user. A foreign
// order id reads exactly like a missing one.
func (l *Ledger) GetOrder(ctx context.Context, userID int64, orderID uuid.UUID) (*domain.Order, error) {
	order, err := l.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

// Total recomputes an order total from its line snapshots plus the
// delivery fee. Exists for auditing; recorded orders already carry it.
func Total(order *domain.Order) decimal.Decimal {
	total := order.Delivery.Fee()
	for _, item := range order.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}
