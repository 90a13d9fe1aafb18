package app

import (
	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

// CurrencyListResult is returned by ListCurrencies and SetActiveCurrency.
type CurrencyListResult struct {
	Currencies []core.Currency `json:"currencies"`
	Base       string          `json:"base"`
	Active     string          `json:"active"`
}

// ConvertResult is returned by Convert.
type ConvertResult struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Formatted string          `json:"formatted"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// CartTotalsDisplay holds the cart totals rendered in the active currency.
type CartTotalsDisplay struct {
	Subtotal  string `json:"subtotal"`
	TaxAmount string `json:"tax_amount"`
	Total     string `json:"total"`
}

// CartResult is the cart state returned after every cart operation.
type CartResult struct {
	Items    []core.CartItem   `json:"items"`
	Totals   core.CartTotals   `json:"totals"`
	Display  CartTotalsDisplay `json:"display"`
	Currency string            `json:"currency"`
	IsEmpty  bool              `json:"is_empty"`
}

// CheckoutResult is returned by a successful Checkout.
type CheckoutResult struct {
	Sale    *core.Sale        `json:"sale"`
	Request *core.SaleRequest `json:"request"`
}
