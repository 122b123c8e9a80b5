// Package domain defines the cart model. A cart belongs to exactly one
// identity, anonymous or authenticated, addressed by an opaque key; the
// two kinds of owner differ only in key namespace.
package domain

import (
	"fmt"
	"time"
)

// UserKey returns the cart key for an authenticated user.
func UserKey(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// SessionKey returns the cart key for an anonymous guest session.
func SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id,omitempty"`
	Key       string     `bson:"key" json:"key"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ProductID int64     `bson:"product_id" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// Quantity returns the quantity of the line for the given product, or 0
// when the cart has no such line.
func (c *Cart) Quantity(productID int64) int {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}
