// Package pricing computes cart totals. Every function here is pure.
//
// Amounts are accumulated at full precision and only rounded when formatted,
// so repeated recomputation never drifts.
package pricing

import (
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the flat sales tax applied to the subtotal.
var DefaultTaxRate = decimal.NewFromFloat(0.10)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Discount  decimal.Decimal
}

// Amount is unitPrice x quantity - discount, floored at zero.
func (l Line) Amount() decimal.Decimal {
	gross := l.Gross()
	amount := gross.Sub(l.Discount)
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Gross is the line value before its discount.
func (l Line) Gross() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

func Compute(lines []Line, cartDiscount decimal.Decimal, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}

	tax := subtotal.Mul(taxRate)
	gross := subtotal.Add(tax)

	discount := Clamp(cartDiscount, decimal.Zero, gross)

	total := gross.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
