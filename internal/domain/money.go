package domain

import (
	"fmt"
	"math"
)

// Money is an immutable amount in minor units (cents) plus a 3-letter
// currency code. Keeping minor units makes per-night multiplication exact;
// rounding only ever happens when converting from a decimal input.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func NewMoney(minor int64, currency string) (Money, error) {
	if minor < 0 {
		return Money{}, &InvalidInputError{Field: "amount", Reason: "must not be negative"}
	}
	if len(currency) != 3 {
		return Money{}, &InvalidInputError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	return Money{Amount: minor, Currency: currency}, nil
}

// MoneyFromFloat converts a decimal amount (e.g. a DECIMAL column) to minor
// units, rounding half-up at 2 decimal places.
func MoneyFromFloat(amount float64, currency string) (Money, error) {
	return NewMoney(int64(math.Floor(amount*100+0.5)), currency)
}

func ZeroMoney(currency string) Money { return Money{Amount: 0, Currency: currency} }

func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("add %s to %s: %w", o.Currency, m.Currency, ErrCurrencyMismatch)
	}
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}, nil
}

// MulInt multiplies by a non-negative count (nights, guests). Negative
// factors clamp to zero rather than producing negative money.
func (m Money) MulInt(n int) Money {
	if n < 0 {
		n = 0
	}
	return Money{Amount: m.Amount * int64(n), Currency: m.Currency}
}

func (m Money) IsZero() bool { return m.Amount == 0 }

func (m Money) Float() float64 { return float64(m.Amount) / 100 }

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Amount/100, m.Amount%100, m.Currency)
}
