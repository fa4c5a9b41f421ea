package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCurrency(t *testing.T) {
	t.Parallel()

	c, err := ParseCurrency(" usd ")
	if err != nil {
		t.Fatalf("expected lowercase code to parse, got %v", err)
	}
	if c != USD {
		t.Fatalf("expected USD, got %s", c)
	}

	if _, err := ParseCurrency("EUR"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
	if _, err := ParseCurrency("EUR"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		from     Currency
		to       Currency
		rate     string
		expected int64
		err      error
	}{
		{name: "same currency ignores rate", amount: 1000, from: KES, to: KES, rate: "0", expected: 1000},
		{name: "usd to kes multiplies", amount: 10, from: USD, to: KES, rate: "129.5", expected: 1295},
		{name: "usd to kes floors", amount: 3, from: USD, to: KES, rate: "129.75", expected: 389},
		{name: "kes to usd divides", amount: 1300, from: KES, to: USD, rate: "130", expected: 10},
		{name: "kes to usd floors", amount: 1299, from: KES, to: USD, rate: "130", expected: 9},
		{name: "zero rate across currencies", amount: 100, from: KES, to: USD, rate: "0", err: ErrInvalidRate},
		{name: "negative rate", amount: 100, from: USD, to: KES, rate: "-1", err: ErrInvalidRate},
		{name: "unknown currency", amount: 100, from: "EUR", to: KES, rate: "1", err: ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.amount, tt.from, tt.to, decimal.RequireFromString(tt.rate))
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

// Floor conversion is lossy but never creates value in either direction.
func TestConvert_RoundTripNeverGains(t *testing.T) {
	rates := []string{"1", "0.37", "99.99", "129.5", "130", "1000.001"}
	amounts := []int64{0, 1, 7, 99, 1000, 123457, 9999999}

	for _, r := range rates {
		rate := decimal.RequireFromString(r)
		for _, amount := range amounts {
			kes, err := Convert(amount, USD, KES, rate)
			if err != nil {
				t.Fatalf("usd->kes: %v", err)
			}
			back, err := Convert(kes, KES, USD, rate)
			if err != nil {
				t.Fatalf("kes->usd: %v", err)
			}
			if back > amount {
				t.Errorf("USD round trip gained value: amount=%d rate=%s back=%d", amount, r, back)
			}

			usd, err := Convert(amount, KES, USD, rate)
			if err != nil {
				t.Fatalf("kes->usd: %v", err)
			}
			back, err = Convert(usd, USD, KES, rate)
			if err != nil {
				t.Fatalf("usd->kes: %v", err)
			}
			if back > amount {
				t.Errorf("KES round trip gained value: amount=%d rate=%s back=%d", amount, r, back)
			}
		}
	}
}
