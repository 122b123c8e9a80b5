package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Tokarsky98/GroceryMartAI/internal/checkout/domain"
	order "github.com/Tokarsky98/GroceryMartAI/internal/order/domain"
)

var (
	ErrNoCheckout = errors.New("no active checkout session")
	ErrWrongStep  = errors.New("action not allowed from the current step")
)

// ValidationError carries the per-field messages for a rejected step
// submission. The session is left exactly as it was.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "checkout form validation failed"
}

// OrderPlacer is the slice of the order ledger the wizard needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, cartKey string, userID int64, shipping order.ShippingInfo, payment order.PaymentSummary, delivery order.DeliveryOption) (*order.Order, error)
}

// Session is one identity's in-flight checkout. It holds the raw form
// state so the client can resume mid-wizard; only the masked summary
// ever reaches the order ledger.
type Session struct {
	Key       string              `json:"key"`
	UserID    int64               `json:"-"`
	Step      domain.Step         `json:"step"`
	Shipping  domain.ShippingForm `json:"shipping"`
	Payment   domain.PaymentForm  `json:"payment"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Checkout drives the shipping -> payment -> review wizard. Sessions are
// held in memory, one live session per identity key.
type Checkout struct {
	mu       sync.Mutex
	sessions map[string]*Session
	orders   OrderPlacer
	logger   *slog.Logger
	now      func() time.Time
}

func NewCheckout(orders OrderPlacer, logger *slog.Logger) *Checkout {
	return &Checkout{
		sessions: make(map[string]*Session),
		orders:   orders,
		logger:   logger,
		now:      time.Now,
	}
}

// Start returns the identity's live session, creating one on the
// shipping step when none exists.
func (c *Checkout) Start(key string, userID int64) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.sessions[key]; ok {
		return snapshot(s)
	}

	now := c.now()
	s := &Session{
		Key:       key,
		UserID:    userID,
		Step:      domain.StepShipping,
		Shipping:  domain.ShippingForm{Delivery: order.DeliveryStandard},
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.sessions[key] = s
	return snapshot(s)
}

func (c *Checkout) Current(key string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[key]
	if !ok {
		return nil, ErrNoCheckout
	}
	return snapshot(s), nil
}

// SubmitShipping validates the first step and advances to payment. On
// validation failure the session keeps its previous form and step.
func (c *Checkout) SubmitShipping(key string, form domain.ShippingForm) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[key]
	if !ok {
		return nil, ErrNoCheckout
	}
	if s.Step != domain.StepShipping {
		return nil, ErrWrongStep
	}

	form.Phone = FormatPhone(form.Phone)
	if errs := ValidateShipping(form); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	s.Shipping = form
	s.Step = domain.StepPayment
	s.UpdatedAt = c.now()
	return snapshot(s), nil
}

// SubmitPayment validates the second step and advances to review.
func (c *Checkout) SubmitPayment(key string, form domain.PaymentForm) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[key]
	if !ok {
		return nil, ErrNoCheckout
	}
	if s.Step != domain.StepPayment {
		return nil, ErrWrongStep
	}

	form.CardNumber = FormatCardNumber(form.CardNumber)
	form.Expiry = FormatExpiry(form.Expiry)
	form.CVV = FormatCVV(form.CVV)
	if errs := ValidatePayment(form, c.now()); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	s.Payment = form
	s.Step = domain.StepReview
	s.UpdatedAt = c.now()
	return snapshot(s), nil
}

// Back moves one step towards shipping. It never fails validation.
func (c *Checkout) Back(key string) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[key]
	if !ok {
		return nil, ErrNoCheckout
	}

	prev := s.Step - 1
	if !domain.CanTransitionTo(s.Step, prev) {
		return nil, ErrWrongStep
	}
	s.Step = prev
	s.UpdatedAt = c.now()
	return snapshot(s), nil
}

// UpdateField applies the live formatter for one field, stores the
// result and returns it with any per-field validation message. Mirrors
// the storefront's as-you-type behavior.
func (c *Checkout) UpdateField(key, field, value string) (string, FieldErrors, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[key]
	if !ok {
		return "", nil, ErrNoCheckout
	}

	formatted := FormatField(field, value)
	errs := FieldErrors{}

	switch field {
	case "phone":
		s.Shipping.Phone = formatted
		if formatted != "" && !validPhone(formatted) {
			errs["phone"] = "Please enter a valid phone number (7-9 digits)"
		}
	case "cardNumber":
		s.Payment.CardNumber = formatted
		if formatted != "" && !validCardNumber(formatted) {
			errs["cardNumber"] = "Please enter a valid card number (13-19 digits)"
		}
	case "expiryDate":
		s.Payment.Expiry = formatted
		if formatted != "" && !validExpiry(formatted, c.now()) {
			errs["expiryDate"] = "Please enter a valid expiry date (MM/YY)"
		}
	case "cvv":
		s.Payment.CVV = formatted
		if formatted != "" && !validCVV(formatted) {
			errs["cvv"] = "Please enter a valid CVV (3 digits)"
		}
	}

	s.UpdatedAt = c.now()
	return formatted, errs, nil
}

// Submit places the order from the review step. On success the session
// is discarded so a fresh checkout can start; on failure the session
// stays on review with its forms intact.
func (c *Checkout) Submit(ctx context.Context, key string) (*order.Order, error) {
	c.mu.Lock()
	s, ok := c.sessions[key]
	if !ok {
		c.mu.Unlock()
		return nil, ErrNoCheckout
	}
	if s.Step != domain.StepReview {
		c.mu.Unlock()
		return nil, ErrWrongStep
	}

	shipping := order.ShippingInfo{
		FullName: s.Shipping.FullName,
		Email:    s.Shipping.Email,
		Phone:    s.Shipping.Phone,
		Address:  s.Shipping.Address,
		City:     s.Shipping.City,
		ZipCode:  s.Shipping.ZipCode,
	}
	payment := maskPayment(s.Payment)
	delivery := s.Shipping.Delivery
	userID := s.UserID
	c.mu.Unlock()

	placed, err := c.orders.PlaceOrder(ctx, key, userID, shipping, payment, delivery)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	delete(c.sessions, key)
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "checkout submitted",
		slog.String("order_id", placed.ID.String()),
		slog.String("cart_key", key))
	return placed, nil
}

// Abandon drops the identity's session, if any.
func (c *Checkout) Abandon(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, key)
}

func maskPayment(form domain.PaymentForm) order.PaymentSummary {
	digits := strings.ReplaceAll(form.CardNumber, " ", "")
	last4 := digits
	if len(digits) > 4 {
		last4 = digits[len(digits)-4:]
	}
	return order.PaymentSummary{CardName: form.CardName, Last4: last4}
}

func snapshot(s *Session) *Session {
	copied := *s
	return &copied
}
