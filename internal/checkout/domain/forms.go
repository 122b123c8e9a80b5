package domain

import order "github.com/Tokarsky98/GroceryMartAI/internal/order/domain"

// ShippingForm is the first wizard step: contact and address details
// plus the delivery option.
type ShippingForm struct {
	FullName string               `json:"fullName"`
	Email    string               `json:"email"`
	Phone    string               `json:"phone"`
	Address  string               `json:"address"`
	City     string               `json:"city"`
	ZipCode  string               `json:"zipCode"`
	Delivery order.DeliveryOption `json:"deliveryOption"`
}

// PaymentForm is the second wizard step. The full card number and CVV
// only ever live inside the checkout session; orders keep a masked
// summary.
type PaymentForm struct {
	CardNumber string `json:"cardNumber"`
	CardName   string `json:"cardName"`
	Expiry     string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}
