package service

import "strings"

// Formatting helpers normalize raw field input the same way the
// storefront renders it, so validation always sees canonical values.

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber groups digits in blocks of four, capped at 16 digits
// plus the 3 separating spaces.
func FormatCardNumber(value string) string {
	digits := digitsOnly(value)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	formatted := b.String()
	if len(formatted) > 19 {
		formatted = formatted[:19]
	}
	return formatted
}

// FormatExpiry normalizes to MM/YY once at least two digits are typed.
func FormatExpiry(value string) string {
	digits := digitsOnly(value)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// FormatPhone groups up to nine digits as 3-3-3.
func FormatPhone(value string) string {
	digits := digitsOnly(value)
	if len(digits) > 9 {
		digits = digits[:9]
	}
	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 6:
		return digits[:3] + " " + digits[3:]
	default:
		return digits[:3] + " " + digits[3:6] + " " + digits[6:]
	}
}

// FormatCVV keeps at most three digits.
func FormatCVV(value string) string {
	digits := digitsOnly(value)
	if len(digits) > 3 {
		digits = digits[:3]
	}
	return digits
}
