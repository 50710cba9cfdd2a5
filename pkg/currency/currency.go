// Package currency formats amounts for display using ISO 4217 currency rules.
package currency

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Known reports whether code is an ISO 4217 currency code.
func Known(code string) bool {
	return money.GetCurrency(strings.ToUpper(code)) != nil
}

// New converts amount into minor units of code, rounding half away from zero.
// It returns nil for unknown currencies.
func New(amount float64, code string) *money.Money {
	code = strings.ToUpper(code)
	cur := money.GetCurrency(code)
	if cur == nil {
		return nil
	}

	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	minor := decimal.NewFromFloat(amount).Mul(factor).Round(0)
	return money.New(minor.IntPart(), code)
}

// Format renders amount with the currency's symbol and separators, e.g. "$1,234.50".
// Unknown currencies fall back to a plain two-decimal amount followed by the code.
func Format(amount float64, code string) string {
	m := New(amount, code)
	if m == nil {
		return decimal.NewFromFloat(amount).StringFixed(2) + " " + strings.ToUpper(code)
	}
	return m.Display()
}
