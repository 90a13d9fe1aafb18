package money

import "github.com/shopspring/decimal"

// Line is the minimal view of a priced line used by the cart helpers.
type Line struct {
	Quantity int
	Price    decimal.Decimal
}

// Breakdown is the result of the composite cart helpers.
// Discount is zero when no discount was applied.
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// CartLineTotal returns quantity × price.
func CartLineTotal(quantity int, price any) (decimal.Decimal, error) {
	return Multiply(quantity, price)
}

// CartSubtotal returns Σ quantity × price over lines.
func CartSubtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// CartTotalWithTax computes subtotal, tax and total. taxRate is a fraction
// (0.15 for 15%), as with TaxAmount.
func CartTotalWithTax(lines []Line, taxRate any) (Breakdown, error) {
	subtotal := CartSubtotal(lines)
	tax, err := TaxAmount(subtotal, taxRate)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}

// CartTotalWithDiscountAndTax applies discountPct (a percentage, 10 for 10%)
// to the subtotal first, then taxes the discounted amount at taxRate (a
// fraction).
func CartTotalWithDiscountAndTax(lines []Line, discountPct, taxRate any) (Breakdown, error) {
	subtotal := CartSubtotal(lines)
	discount, err := DiscountAmount(subtotal, discountPct)
	if err != nil {
		return Breakdown{}, err
	}
	discounted := subtotal.Sub(discount)
	tax, err := TaxAmount(discounted, taxRate)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    discounted.Add(tax),
	}, nil
}
