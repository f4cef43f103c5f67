package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount stored as DECIMAL(12,2) and rendered in JSON
// as a number with exactly two fractional digits.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d} }

func MoneyFromInt(v int64) Money { return Money{Decimal: decimal.NewFromInt(v)} }

// ParseMoney accepts the textual form of a decimal ("2000", "2000.50").
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{Decimal: d}, nil
}

func (m Money) Add(n Money) Money { return Money{Decimal: m.Decimal.Add(n.Decimal)} }
func (m Money) Sub(n Money) Money { return Money{Decimal: m.Decimal.Sub(n.Decimal)} }

// Round2 rounds half away from zero to cents.
func (m Money) Round2() Money { return Money{Decimal: m.Decimal.Round(2)} }

// WholeCents reports whether m has no fractional cents.
func (m Money) WholeCents() bool { return m.Decimal.Equal(m.Decimal.Round(2)) }

func (m Money) String() string { return m.Decimal.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.StringFixed(2)), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (m *Money) UnmarshalJSON(b []byte) error {
	return m.Decimal.UnmarshalJSON(b)
}

func (m Money) Value() (driver.Value, error) {
	return m.Decimal.StringFixed(2), nil
}

func (m *Money) Scan(value interface{}) error {
	return m.Decimal.Scan(value)
}

// Percent shares Money's storage and two-digit rendering (annual yields).
type Percent = Money
