package core

import (
	"net/mail"
	"strings"

	"pos-terminal/internal/money"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BuildSaleRequest projects cart lines into the sale payload.
//
// The discount is applied before tax: each line's gross (unit price ×
// quantity) is reduced by DiscountPercent and its tax is reduced in the same
// proportion. Line parts are rounded to cents first and the header totals
// are sums of the rounded parts, so Σ line_total == total_amount exactly.
func BuildSaleRequest(items []CartItem, req CheckoutRequest) (*SaleRequest, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	pct := req.DiscountPercent
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return nil, ErrInvalidDiscount
	}
	email := strings.TrimSpace(req.CustomerEmail)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return nil, ErrInvalidEmail
		}
	}

	keep := decimal.NewFromInt(1).Sub(money.SafeDivide(pct, hundred))
	var subtotal, discount, tax, total decimal.Decimal
	lines := make([]SaleItemRequest, 0, len(items))

	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		gross := it.UnitPrice.Mul(qty).Round(2)
		lineDiscount, _ := money.DiscountAmount(gross, pct)
		lineDiscount = lineDiscount.Round(2)
		lineTax := it.TaxAmount.Mul(qty).Mul(keep).Round(2)
		lineTotal := gross.Sub(lineDiscount).Add(lineTax)

		subtotal = subtotal.Add(gross)
		discount = discount.Add(lineDiscount)
		tax = tax.Add(lineTax)
		total = total.Add(lineTotal)

		lines = append(lines, SaleItemRequest{
			ProductID:      it.Product.ID,
			Quantity:       it.Quantity,
			UnitPrice:      money.ToFloat(it.UnitPrice.Round(2)),
			DiscountAmount: money.ToFloat(lineDiscount),
			LineTotal:      money.ToFloat(lineTotal),
		})
	}

	return &SaleRequest{
		IdempotencyKey: req.IdempotencyKey,
		Items:          lines,
		Subtotal:       money.ToFloat(subtotal),
		TaxAmount:      money.ToFloat(tax),
		DiscountAmount: money.ToFloat(discount),
		TotalAmount:    money.ToFloat(total),
		PaymentMethod:  req.PaymentMethod,
		CustomerName:   optional(req.CustomerName),
		CustomerPhone:  optional(req.CustomerPhone),
		CustomerEmail:  optional(email),
		Notes:          optional(req.Notes),
	}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
