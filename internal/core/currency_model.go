package core

import (
	"errors"
	"fmt"

	"pos-terminal/internal/money"

	"github.com/shopspring/decimal"
)

// Currency describes how amounts are converted into and rendered in one
// display currency. Rate is the value of one base-currency unit expressed in
// this currency; the base currency has Rate exactly 1.
type Currency struct {
	Code              string          `json:"code"`
	Symbol            string          `json:"symbol"`
	DisplayName       string          `json:"display_name"`
	DecimalPlaces     int32           `json:"decimal_places"`
	Rate              decimal.Decimal `json:"rate"`
	GroupingSeparator string          `json:"grouping_separator"`
	DecimalSeparator  string          `json:"decimal_separator"`
	SymbolAfter       bool            `json:"symbol_after"` // "600 FCFA" rather than "$600"
}

// FormatOptions tweaks Format. The zero value shows the symbol and no code.
type FormatOptions struct {
	HideSymbol bool
	ShowCode   bool
}

// UnknownCurrencyError is returned when a currency code is not registered.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Code)
}

// Registry is an immutable set of currencies with exactly one base currency.
type Registry struct {
	base       string
	currencies map[string]Currency
}

// NewRegistry validates currencies and builds a registry around base.
func NewRegistry(base string, currencies ...Currency) (*Registry, error) {
	r := &Registry{base: base, currencies: make(map[string]Currency, len(currencies))}
	for _, c := range currencies {
		if c.Code == "" {
			return nil, errors.New("currency code must not be empty")
		}
		if _, dup := r.currencies[c.Code]; dup {
			return nil, fmt.Errorf("currency %s registered twice", c.Code)
		}
		if !c.Rate.IsPositive() {
			return nil, fmt.Errorf("currency %s: rate must be > 0, got %s", c.Code, c.Rate)
		}
		if c.DecimalPlaces < 0 {
			return nil, fmt.Errorf("currency %s: decimal places must be >= 0", c.Code)
		}
		if c.DecimalPlaces > 0 && c.DecimalSeparator == "" {
			return nil, fmt.Errorf("currency %s: decimal separator required", c.Code)
		}
		if c.GroupingSeparator != "" && c.GroupingSeparator == c.DecimalSeparator {
			return nil, fmt.Errorf("currency %s: grouping and decimal separators must differ", c.Code)
		}
		r.currencies[c.Code] = c
	}

	b, ok := r.currencies[base]
	if !ok {
		return nil, &UnknownCurrencyError{Code: base}
	}
	if !b.Rate.Equal(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("base currency %s must have rate 1, got %s", base, b.Rate)
	}
	return r, nil
}

// Base returns the base currency.
func (r *Registry) Base() Currency {
	return r.currencies[r.base]
}

// Lookup returns the currency registered under code.
func (r *Registry) Lookup(code string) (Currency, error) {
	c, ok := r.currencies[code]
	if !ok {
		return Currency{}, &UnknownCurrencyError{Code: code}
	}
	return c, nil
}

// All returns a copy of the registry contents.
func (r *Registry) All() map[string]Currency {
	out := make(map[string]Currency, len(r.currencies))
	for k, v := range r.currencies {
		out[k] = v
	}
	return out
}

// Rebase returns a registry whose base is code, with every rate re-expressed
// against it.
func (r *Registry) Rebase(code string) (*Registry, error) {
	nb, err := r.Lookup(code)
	if err != nil {
		return nil, err
	}
	if code == r.base {
		return r, nil
	}
	rebased := make([]Currency, 0, len(r.currencies))
	for _, c := range r.currencies {
		if c.Code == code {
			c.Rate = decimal.NewFromInt(1)
		} else {
			c.Rate = money.SafeDivide(c.Rate, nb.Rate)
		}
		rebased = append(rebased, c)
	}
	return NewRegistry(code, rebased...)
}

// DefaultCurrencies is the built-in table, expressed against USD.
var DefaultCurrencies = []Currency{
	{Code: "USD", Symbol: "$", DisplayName: "US Dollar", DecimalPlaces: 2, Rate: decimal.NewFromInt(1), GroupingSeparator: ",", DecimalSeparator: "."},
	{Code: "EUR", Symbol: "€", DisplayName: "Euro", DecimalPlaces: 2, Rate: decimal.RequireFromString("0.92"), GroupingSeparator: ".", DecimalSeparator: ",", SymbolAfter: true},
	{Code: "GBP", Symbol: "£", DisplayName: "British Pound", DecimalPlaces: 2, Rate: decimal.RequireFromString("0.79"), GroupingSeparator: ",", DecimalSeparator: "."},
	{Code: "NGN", Symbol: "₦", DisplayName: "Nigerian Naira", DecimalPlaces: 2, Rate: decimal.RequireFromString("1550"), GroupingSeparator: ",", DecimalSeparator: "."},
	{Code: "GHS", Symbol: "GH₵", DisplayName: "Ghanaian Cedi", DecimalPlaces: 2, Rate: decimal.RequireFromString("15.5"), GroupingSeparator: ",", DecimalSeparator: "."},
	{Code: "KES", Symbol: "KSh", DisplayName: "Kenyan Shilling", DecimalPlaces: 2, Rate: decimal.RequireFromString("129"), GroupingSeparator: ",", DecimalSeparator: "."},
	{Code: "XOF", Symbol: "FCFA", DisplayName: "West African CFA Franc", DecimalPlaces: 0, Rate: decimal.RequireFromString("600"), GroupingSeparator: " ", DecimalSeparator: ",", SymbolAfter: true},
	{Code: "XAF", Symbol: "FCFA", DisplayName: "Central African CFA Franc", DecimalPlaces: 0, Rate: decimal.RequireFromString("600"), GroupingSeparator: " ", DecimalSeparator: ",", SymbolAfter: true},
}

// DefaultRegistry returns the built-in registry based on USD.
func DefaultRegistry() *Registry {
	r, err := NewRegistry("USD", DefaultCurrencies...)
	if err != nil {
		panic(err)
	}
	return r
}
