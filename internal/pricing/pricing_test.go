package pricing_test

import (
	"testing"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		lines        []pricing.Line
		cartDiscount decimal.Decimal
		wantSubtotal string
		wantTax      string
		wantDiscount string
		wantTotal    string
	}{
		{
			name:         "Empty cart",
			wantSubtotal: "0.00",
			wantTax:      "0.00",
			wantDiscount: "0.00",
			wantTotal:    "0.00",
		},
		{
			name:         "Single line",
			lines:        []pricing.Line{{UnitPrice: d("10.00"), Quantity: 2}},
			wantSubtotal: "20.00",
			wantTax:      "2.00",
			wantDiscount: "0.00",
			wantTotal:    "22.00",
		},
		{
			name:         "Cart discount",
			lines:        []pricing.Line{{UnitPrice: d("10.00"), Quantity: 2}},
			cartDiscount: d("5.00"),
			wantSubtotal: "20.00",
			wantTax:      "2.00",
			wantDiscount: "5.00",
			wantTotal:    "17.00",
		},
		{
			name: "Line discount floors at zero",
			lines: []pricing.Line{
				{UnitPrice: d("3.00"), Quantity: 1, Discount: d("10.00")},
				{UnitPrice: d("5.00"), Quantity: 2, Discount: d("1.00")},
			},
			wantSubtotal: "9.00",
			wantTax:      "0.90",
			wantDiscount: "0.00",
			wantTotal:    "9.90",
		},
		{
			name:         "Cart discount capped at subtotal plus tax",
			lines:        []pricing.Line{{UnitPrice: d("10.00"), Quantity: 1}},
			cartDiscount: d("500"),
			wantSubtotal: "10.00",
			wantTax:      "1.00",
			wantDiscount: "11.00",
			wantTotal:    "0.00",
		},
		{
			name:         "Negative cart discount ignored",
			lines:        []pricing.Line{{UnitPrice: d("10.00"), Quantity: 1}},
			cartDiscount: d("-3"),
			wantSubtotal: "10.00",
			wantTax:      "1.00",
			wantDiscount: "0.00",
			wantTotal:    "11.00",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			totals := pricing.Compute(tc.lines, tc.cartDiscount, pricing.DefaultTaxRate)

			assert.Equal(t, tc.wantSubtotal, pricing.Format(totals.Subtotal))
			assert.Equal(t, tc.wantTax, pricing.Format(totals.Tax))
			assert.Equal(t, tc.wantDiscount, pricing.Format(totals.Discount))
			assert.Equal(t, tc.wantTotal, pricing.Format(totals.Total))
		})
	}
}

func TestComputeTotalInvariant(t *testing.T) {
	discounts := []string{"0", "0.01", "3.33", "19.99", "1000"}
	lines := []pricing.Line{
		{UnitPrice: d("0.10"), Quantity: 3},
		{UnitPrice: d("19.99"), Quantity: 1, Discount: d("0.99")},
		{UnitPrice: d("7.333"), Quantity: 7},
	}

	for _, disc := range discounts {
		totals := pricing.Compute(lines, d(disc), pricing.DefaultTaxRate)

		expected := decimal.Max(decimal.Zero, totals.Subtotal.Add(totals.Tax).Sub(totals.Discount))
		assert.True(t, expected.Equal(totals.Total), "total mismatch for discount %s", disc)
		assert.False(t, totals.Subtotal.IsNegative())
		assert.False(t, totals.Total.IsNegative())
	}
}

func TestComputeKeepsPrecisionUntilFormatting(t *testing.T) {
	// 3 x 0.333 stays 0.999 internally
	lines := []pricing.Line{{UnitPrice: d("0.333"), Quantity: 3}}

	totals := pricing.Compute(lines, decimal.Zero, decimal.Zero)

	assert.True(t, d("0.999").Equal(totals.Subtotal))
	assert.Equal(t, "1.00", pricing.Format(totals.Subtotal))
}

func TestMoney(t *testing.T) {
	m, err := pricing.NewMoney(d("17"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD 17.00", m.String())

	_, err = pricing.NewMoney(d("1"), "NOPE")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	v, err := pricing.ParseAmount("12.50")
	require.NoError(t, err)
	assert.Equal(t, "12.50", pricing.Format(v))

	_, err = pricing.ParseAmount("twelve")
	assert.ErrorContains(t, err, "amount[twelve] is not valid")
}
