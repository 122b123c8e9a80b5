package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Tokarsky98/GroceryMartAI/internal/checkout/domain"
	order "github.com/Tokarsky98/GroceryMartAI/internal/order/domain"
)

// FieldErrors maps a form field name to its validation message. An empty
// map means the form passed.
type FieldErrors map[string]string

var (
	cardNumberPattern = regexp.MustCompile(`^[0-9]{13,19}$`)
	cvvPattern        = regexp.MustCompile(`^[0-9]{3}$`)
	expiryPattern     = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

func validPhone(phone string) bool {
	n := len(digitsOnly(phone))
	return n >= 7 && n <= 9
}

// validCardNumber strips only spaces, so a dash-separated number is
// rejected rather than silently accepted.
func validCardNumber(cardNumber string) bool {
	return cardNumberPattern.MatchString(strings.ReplaceAll(cardNumber, " ", ""))
}

func validExpiry(expiry string, now time.Time) bool {
	if !expiryPattern.MatchString(expiry) {
		return false
	}
	month, _ := strconv.Atoi(expiry[:2])
	year, _ := strconv.Atoi("20" + expiry[3:])

	if month < 1 || month > 12 {
		return false
	}
	if year < now.Year() {
		return false
	}
	if year == now.Year() && month < int(now.Month()) {
		return false
	}
	return true
}

func validCVV(cvv string) bool {
	return cvvPattern.MatchString(cvv)
}

// ValidateShipping checks the first wizard step.
func ValidateShipping(form domain.ShippingForm) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(form.FullName) == "" {
		errs["fullName"] = "Full name is required"
	}
	if strings.TrimSpace(form.Email) == "" {
		errs["email"] = "Email is required"
	}
	if strings.TrimSpace(form.Phone) == "" {
		errs["phone"] = "Phone is required"
	} else if !validPhone(form.Phone) {
		errs["phone"] = "Please enter a valid phone number (7-9 digits)"
	}
	if strings.TrimSpace(form.Address) == "" {
		errs["address"] = "Address is required"
	}
	if strings.TrimSpace(form.City) == "" {
		errs["city"] = "City is required"
	}
	if strings.TrimSpace(form.ZipCode) == "" {
		errs["zipCode"] = "ZIP code is required"
	}
	switch form.Delivery {
	case order.DeliveryStandard, order.DeliveryExpress, order.DeliveryOvernight:
	default:
		errs["deliveryOption"] = "Please choose a delivery option"
	}

	return errs
}

// ValidatePayment checks the second wizard step. The clock is passed in
// so expiry checks are testable.
func ValidatePayment(form domain.PaymentForm, now time.Time) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(form.CardNumber) == "" {
		errs["cardNumber"] = "Card number is required"
	} else if !validCardNumber(form.CardNumber) {
		errs["cardNumber"] = "Please enter a valid card number (13-19 digits)"
	}
	if strings.TrimSpace(form.CardName) == "" {
		errs["cardName"] = "Cardholder name is required"
	}
	if strings.TrimSpace(form.Expiry) == "" {
		errs["expiryDate"] = "Expiry date is required"
	} else if !validExpiry(form.Expiry, now) {
		errs["expiryDate"] = "Please enter a valid expiry date (MM/YY)"
	}
	if strings.TrimSpace(form.CVV) == "" {
		errs["cvv"] = "CVV is required"
	} else if !validCVV(form.CVV) {
		errs["cvv"] = "Please enter a valid CVV (3 digits)"
	}

	return errs
}

// FormatField applies the live formatter for a single field, leaving
// unknown fields untouched.
func FormatField(field, value string) string {
	switch field {
	case "phone":
		return FormatPhone(value)
	case "cardNumber":
		return FormatCardNumber(value)
	case "expiryDate":
		return FormatExpiry(value)
	case "cvv":
		return FormatCVV(value)
	default:
		return value
	}
}
