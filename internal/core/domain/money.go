package domain

import (
	"fmt"
	"strings"

	"github.com/dgrad/efintrack/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Currency is an ISO-3 currency code handled by the kernel.
type Currency string

const (
	CDF Currency = "CDF" // Congolese Franc
	USD Currency = "USD" // United States Dollar
)

// Currencies lists every supported currency in a stable order.
var Currencies = []Currency{CDF, USD}

// amountScale is the number of fractional digits every persisted amount carries.
const amountScale int32 = 2

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CDF || c == USD
}

// ParseCurrency normalises and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, code)
	}
	return c, nil
}

// RoundingMode selects how percent operations round to two places.
type RoundingMode string

const (
	RoundHalfEven RoundingMode = "half-even"
	RoundHalfUp   RoundingMode = "half-up"
)

// Amount is a non-negative decimal value with scale 2 in a single currency.
type Amount struct {
	Currency Currency        `json:"currency"`
	Value    decimal.Decimal `json:"value"`
}

// NewAmount validates the currency, the sign and the scale of value.
func NewAmount(currency Currency, value decimal.Decimal) (Amount, error) {
	if !currency.Valid() {
		return Amount{}, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, currency)
	}
	if value.IsNegative() {
		return Amount{}, fmt.Errorf("%w: amount must not be negative (%s)", apperrors.ErrValidation, value.String())
	}
	if !value.Equal(value.Round(amountScale)) {
		return Amount{}, fmt.Errorf("%w: amount %s has more than %d fractional digits", apperrors.ErrValidation, value.String(), amountScale)
	}
	return Amount{Currency: currency, Value: value}, nil
}

// ParseAmount builds an Amount from its textual parts.
func ParseAmount(currency string, value string) (Amount, error) {
	c, err := ParseCurrency(currency)
	if err != nil {
		return Amount{}, err
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: invalid amount %q", apperrors.ErrValidation, value)
	}
	return NewAmount(c, d)
}

// MustAmount is ParseAmount for literals known to be valid. It panics otherwise.
func MustAmount(currency Currency, value string) Amount {
	a, err := ParseAmount(string(currency), value)
	if err != nil {
		panic(err)
	}
	return a
}

// ZeroAmount returns 0.00 in the given currency.
func ZeroAmount(currency Currency) Amount {
	return Amount{Currency: currency, Value: decimal.Zero}
}

// IsZero reports whether the value is zero.
func (a Amount) IsZero() bool {
	return a.Value.IsZero()
}

// Equal compares currency and value.
func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Value.Equal(b.Value)
}

// GreaterThan compares two amounts of the same currency.
func (a Amount) GreaterThan(b Amount) (bool, error) {
	if a.Currency != b.Currency {
		return false, mismatch(a, b)
	}
	return a.Value.GreaterThan(b.Value), nil
}

// Add returns a+b. Both operands must share a currency.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, mismatch(a, b)
	}
	return Amount{Currency: a.Currency, Value: a.Value.Add(b.Value)}, nil
}

// Subtract returns a-b. Overshooting below zero is refused.
func (a Amount) Subtract(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, mismatch(a, b)
	}
	if b.Value.GreaterThan(a.Value) {
		return Amount{}, fmt.Errorf("%w: cannot subtract %s from %s", apperrors.ErrValidation, b, a)
	}
	return Amount{Currency: a.Currency, Value: a.Value.Sub(b.Value)}, nil
}

// SubtractClamped returns max(a-b, 0).
func (a Amount) SubtractClamped(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, mismatch(a, b)
	}
	diff := a.Value.Sub(b.Value)
	if diff.IsNegative() {
		diff = decimal.Zero
	}
	return Amount{Currency: a.Currency, Value: diff}, nil
}

// Percent applies rate (0.03 for 3 %) and rounds to two places.
func (a Amount) Percent(rate decimal.Decimal, mode RoundingMode) Amount {
	return Amount{Currency: a.Currency, Value: RoundMoney(a.Value.Mul(rate), mode)}
}

// String renders "USD 400.00".
func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Currency, a.Value.StringFixed(amountScale))
}

// RoundMoney rounds d to two fractional digits with the given mode.
func RoundMoney(d decimal.Decimal, mode RoundingMode) decimal.Decimal {
	if mode == RoundHalfUp {
		return d.Round(amountScale)
	}
	return d.RoundBank(amountScale)
}

func mismatch(a, b Amount) error {
	return fmt.Errorf("%w: %s vs %s", apperrors.ErrCurrencyMismatch, a.Currency, b.Currency)
}

// CurrencyTotals holds one decimal per supported currency.
type CurrencyTotals struct {
	CDF decimal.Decimal `json:"cdf"`
	USD decimal.Decimal `json:"usd"`
}

// Get returns the value for c.
func (t CurrencyTotals) Get(c Currency) decimal.Decimal {
	if c == USD {
		return t.USD
	}
	return t.CDF
}

// Set overwrites the value for c.
func (t *CurrencyTotals) Set(c Currency, v decimal.Decimal) {
	if c == USD {
		t.USD = v
		return
	}
	t.CDF = v
}

// AddTo accumulates v into the bucket for c.
func (t *CurrencyTotals) AddTo(c Currency, v decimal.Decimal) {
	t.Set(c, t.Get(c).Add(v))
}

// Sub returns t-o per currency. Results may be negative.
func (t CurrencyTotals) Sub(o CurrencyTotals) CurrencyTotals {
	return CurrencyTotals{CDF: t.CDF.Sub(o.CDF), USD: t.USD.Sub(o.USD)}
}

// Equal compares both buckets.
func (t CurrencyTotals) Equal(o CurrencyTotals) bool {
	return t.CDF.Equal(o.CDF) && t.USD.Equal(o.USD)
}
