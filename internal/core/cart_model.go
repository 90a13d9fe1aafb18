package core

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Product is the catalog snapshot a cart line is built from. Prices are in
// the base currency; TaxRate is a percentage (0–100). AvailableStock is the
// stock not already committed elsewhere, as of when the snapshot was taken.
// Name, SKU and Attributes are carried along but never interpreted.
type Product struct {
	ID             int             `json:"id"`
	SKU            string          `json:"sku,omitempty"`
	Name           string          `json:"name,omitempty"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	IsTaxable      bool            `json:"is_taxable"`
	AvailableStock int             `json:"available_stock"`
	Attributes     map[string]any  `json:"attributes,omitempty"`
}

// ProductInput is a product snapshot as it arrives from the catalog or UI,
// with plain numbers. Pointer fields distinguish "absent" from zero.
type ProductInput struct {
	ID             *int           `json:"id"`
	SKU            string         `json:"sku,omitempty"`
	Name           string         `json:"name,omitempty"`
	SellingPrice   *float64       `json:"sellingPrice"`
	TaxRate        *float64       `json:"taxRate"`
	IsTaxable      bool           `json:"isTaxable"`
	AvailableStock *int           `json:"availableStock"`
	Attributes     map[string]any `json:"attributes,omitempty"`
}

// ProductValidationError reports a malformed product snapshot.
type ProductValidationError struct {
	Field  string
	Reason string
}

func (e *ProductValidationError) Error() string {
	return fmt.Sprintf("invalid product snapshot: %s %s", e.Field, e.Reason)
}

// ToProduct validates the snapshot and converts its numbers to decimals.
// A missing tax rate means 0.
func (in ProductInput) ToProduct() (Product, error) {
	if in.ID == nil {
		return Product{}, &ProductValidationError{Field: "id", Reason: "is required"}
	}
	if *in.ID <= 0 {
		return Product{}, &ProductValidationError{Field: "id", Reason: "must be positive"}
	}
	if in.SellingPrice == nil {
		return Product{}, &ProductValidationError{Field: "sellingPrice", Reason: "is required"}
	}
	if !finite(*in.SellingPrice) || *in.SellingPrice < 0 {
		return Product{}, &ProductValidationError{Field: "sellingPrice", Reason: "must be a finite number >= 0"}
	}
	taxRate := 0.0
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	if !finite(taxRate) || taxRate < 0 || taxRate > 100 {
		return Product{}, &ProductValidationError{Field: "taxRate", Reason: "must be between 0 and 100"}
	}
	if in.AvailableStock == nil {
		return Product{}, &ProductValidationError{Field: "availableStock", Reason: "is required"}
	}
	if *in.AvailableStock < 0 {
		return Product{}, &ProductValidationError{Field: "availableStock", Reason: "must be >= 0"}
	}

	return Product{
		ID:             *in.ID,
		SKU:            in.SKU,
		Name:           in.Name,
		SellingPrice:   decimal.NewFromFloat(*in.SellingPrice),
		TaxRate:        decimal.NewFromFloat(taxRate),
		IsTaxable:      in.IsTaxable,
		AvailableStock: *in.AvailableStock,
		Attributes:     in.Attributes,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// CartItem is one product line. TaxAmount is per unit; LineTotal is
// Quantity × (UnitPrice + TaxAmount).
type CartItem struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// CartTotals are the aggregates derived from the item list.
// ItemCount is the sum of quantities, not the number of lines.
type CartTotals struct {
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}
