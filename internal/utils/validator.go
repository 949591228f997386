package utils

import (
	"fmt"     // Error formatting
	"regexp"  // Email pattern
	"strings" // Trimming
	"time"    // Date parsing

	"github.com/shopspring/decimal" // Exact money parsing
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// Money limits matching the decimal(20,2) columns
const (
	MaxAmountLength   = 40 // Longest accepted amount text
	MaxIntegerDigits  = 18 // Digits left of the point
	MaxFractionDigits = 2  // Whole cents
	minAmountExponent = -MaxAmountLength
)

// ParseMoney parses a non-negative money value that fits a decimal(20,2) column.
// Bounds are checked on the parsed coefficient and exponent before any rounding.
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	if len(s) > MaxAmountLength {
		return decimal.Zero, fmt.Errorf("amount is too long")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount is not a number: %w", err)
	}
	exp := int64(d.Exponent())
	if exp < minAmountExponent || int64(d.NumDigits())+exp > MaxIntegerDigits {
		return decimal.Zero, fmt.Errorf("amount is out of range")
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount must not be negative, got %s", d)
	}
	if !d.Equal(d.Round(MaxFractionDigits)) {
		return decimal.Zero, fmt.Errorf("amount has more than %d decimal places", MaxFractionDigits)
	}
	return d, nil
}

// ParseAmount parses a money amount that must be strictly positive
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseMoney(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive, got %s", d)
	}
	return d, nil
}

// ParseDate parses a YYYY-MM-DD date in loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	return t, nil
}

// ValidateEmail checks the address shape
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("Please enter a valid email")
	}
	return nil
}

// ValidatePassword checks length and confirmation
func ValidatePassword(password, confirm string) error {
	if password == "" || confirm == "" {
		return fmt.Errorf("Please fill out both password fields.")
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("Password must be at least %d characters", MinPasswordLength)
	}
	if password != confirm {
		return fmt.Errorf("Passwords do not match")
	}
	return nil
}

// Required reports whether every value is non-blank
func Required(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
