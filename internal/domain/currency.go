package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the two supported currency codes.
type Currency string

const (
	// KES is the base currency. Reports are expressed in it.
	KES Currency = "KES"
	// USD amounts are converted with a USD-to-KES rate stored on each event.
	USD Currency = "USD"
)

// BaseCurrency is the currency reports are aggregated in.
const BaseCurrency = KES

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: got %q", ErrInvalidCurrency, s)
	}
	return c, nil
}

// Valid reports whether c is KES or USD.
func (c Currency) Valid() bool {
	return c == KES || c == USD
}

// Convert moves amount from one currency to another using rate, the number of
// KES per USD. Results are floored so repeated runs are reproducible:
//
//	KES -> USD: floor(amount / rate)
//	USD -> KES: floor(amount * rate)
//
// The rate is ignored when both currencies are equal.
func Convert(amount int64, from, to Currency, rate decimal.Decimal) (int64, error) {
	if !from.Valid() {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidCurrency, from)
	}
	if !to.Valid() {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidCurrency, to)
	}
	if from == to {
		return amount, nil
	}
	if !rate.IsPositive() {
		return 0, fmt.Errorf("%w: %s -> %s with rate %s", ErrInvalidRate, from, to, rate)
	}

	amt := decimal.NewFromInt(amount)
	if from == USD {
		return amt.Mul(rate).Floor().IntPart(), nil
	}
	return amt.Div(rate).Floor().IntPart(), nil
}
