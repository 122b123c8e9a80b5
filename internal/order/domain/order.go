package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// DeliveryOption selects the shipping tier. Fees mirror the storefront's
// published rates.
type DeliveryOption string

const (
	DeliveryStandard  DeliveryOption = "standard"
	DeliveryExpress   DeliveryOption = "express"
	DeliveryOvernight DeliveryOption = "overnight"
)

// Fee returns the delivery surcharge for the option. Unknown options cost
// nothing, same as standard.
func (d DeliveryOption) Fee() decimal.Decimal {
	switch d {
	case DeliveryExpress:
		return decimal.NewFromFloat(9.99)
	case DeliveryOvernight:
		return decimal.NewFromFloat(19.99)
	default:
		return decimal.Zero
	}
}

// OrderItem is a line snapshot: the quantity and the unit price read from
// the inventory at the moment the stock was reserved. Client-supplied
// prices never reach here.
type OrderItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal is quantity times the captured unit price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type ShippingInfo struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	ZipCode  string `json:"zip_code"`
}

// PaymentSummary is all that survives of the card details: enough to
// render "card ending in 1234" and nothing more.
type PaymentSummary struct {
	CardName string `json:"card_name"`
	Last4    string `json:"last4"`
}

// Order is immutable once created.
type Order struct {
	ID        uuid.UUID       `json:"id"`
	CartKey   string          `json:"-"`
	UserID    int64           `json:"user_id"`
	Items     []OrderItem     `json:"items"`
	Shipping  ShippingInfo    `json:"shipping"`
	Payment   PaymentSummary  `json:"payment"`
	Delivery  DeliveryOption  `json:"delivery_option"`
	Total     decimal.Decimal `json:"total"`
	Status    OrderStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
