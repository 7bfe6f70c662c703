// Package pricing turns quote lines, a global discount and a tax rate into a
// monetary breakdown. Every function here is pure and never fails: invalid
// numeric input is clamped so interactive editing always renders sane totals.
package pricing

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of decimal places money is rounded to.
const CurrencyPlaces = 2

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// Line is the pricing input of one quote row.
type Line struct {
	UnitPrice       decimal.Decimal
	Quantity        int
	DiscountPercent decimal.Decimal
}

// Totals is the breakdown of a whole quote.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// ClampQuantity treats zero or negative quantities as 1.
func ClampQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}

// ClampPercent bounds a percentage to [0,100].
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// ClampRate bounds a tax rate below by zero. Rates above 100% are legal.
func ClampRate(r decimal.Decimal) decimal.Decimal {
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// ClampPrice bounds a unit price below by zero.
func ClampPrice(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// Round rounds an amount to currency precision.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

func remainingFraction(discountPercent decimal.Decimal) decimal.Decimal {
	return one.Sub(ClampPercent(discountPercent).Div(hundred))
}

// ComputeLineTotal returns quantity × unitPrice × (1 − discount/100) rounded to
// currency precision.
func ComputeLineTotal(unitPrice decimal.Decimal, quantity int, discountPercent decimal.Decimal) decimal.Decimal {
	gross := ClampPrice(unitPrice).Mul(decimal.NewFromInt(int64(ClampQuantity(quantity))))
	return Round(gross.Mul(remainingFraction(discountPercent)))
}

// ComputeQuoteTotals applies, in order: per-line discounts, the sum into the
// subtotal, the global discount, and tax on the discounted subtotal. Rounding
// of the quote-level amounts happens once, on the final values.
func ComputeQuoteTotals(lines []Line, globalDiscountPercent, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(ComputeLineTotal(l.UnitPrice, l.Quantity, l.DiscountPercent))
	}

	discounted := subtotal.Mul(remainingFraction(globalDiscountPercent))
	taxFraction := ClampRate(taxRatePercent).Div(hundred)
	tax := discounted.Mul(taxFraction)

	return Totals{
		Subtotal:       Round(subtotal),
		DiscountAmount: Round(subtotal.Sub(discounted)),
		TaxAmount:      Round(tax),
		Total:          Round(discounted.Mul(one.Add(taxFraction))),
	}
}
