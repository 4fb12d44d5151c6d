package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotANumber     = errors.New("amount is not a number")
	ErrFractional     = errors.New("amount must be a whole number")
	ErrNotPositive    = errors.New("amount must be greater than zero")
	ErrAmountTooLarge = errors.New("amount is too large")
)

// maxAmount keeps totals (price + fee) well inside int64.
var maxAmount = decimal.NewFromInt(1_000_000_000)

// ParseWholeAmount parses a user-entered price such as "1700", "1,700" or
// "1700.00" into whole currency units.
func ParseWholeAmount(raw string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0, ErrNotANumber
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, raw)
	}
	if !amount.IsInteger() {
		return 0, ErrFractional
	}
	if !amount.IsPositive() {
		return 0, ErrNotPositive
	}
	if amount.GreaterThan(maxAmount) {
		return 0, ErrAmountTooLarge
	}

	return amount.IntPart(), nil
}

// Format renders whole units with thousands separators, e.g. 1750 -> "1,750".
func Format(amount int64) string {
	digits := decimal.NewFromInt(amount).Abs().String()

	var b strings.Builder
	if amount < 0 {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatBaht is Format with the currency suffix used in chat messages.
func FormatBaht(amount int64) string {
	return Format(amount) + " บาท"
}

// PaymentString renders an amount with two decimals for payment links.
func PaymentString(amount int64) string {
	return decimal.NewFromInt(amount).StringFixed(2)
}
