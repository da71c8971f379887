package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Format renders an amount for display with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("amount[%s] is not valid: %w", s, err)
	}
	return d, nil
}

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, code string) (Money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return Money{}, fmt.Errorf("currency[%s] is not valid: %w", code, err)
	}
	return Money{Amount: amount, Currency: unit}, nil
}

// String renders e.g. "USD 17.00".
func (m Money) String() string {
	return m.Currency.String() + " " + Format(m.Amount)
}
