package app

import "github.com/shopspring/decimal"

// ConvertRequest is the input for Convert.
type ConvertRequest struct {
	Amount decimal.Decimal
	From   string
	To     string
}

// FormatRequest is the input for FormatAmount. An empty Currency means the
// active currency.
type FormatRequest struct {
	AmountInBase decimal.Decimal
	Currency     string
	HideSymbol   bool
	ShowCode     bool
}

// CheckoutRequest is what the cashier enters when completing a sale.
type CheckoutRequest struct {
	PaymentMethod   string
	DiscountPercent decimal.Decimal
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	Notes           string
	// IdempotencyKey is generated when empty. Reuse it to retry a checkout
	// whose outcome is unknown.
	IdempotencyKey string
}
