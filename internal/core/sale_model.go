package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was settled.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentMobileMoney  PaymentMethod = "mobile_money"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// PaymentMethods lists the accepted methods in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentMobileMoney, PaymentBankTransfer}

// Valid reports whether m is one of the accepted payment methods.
func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidDiscount      = errors.New("discount percent must be between 0 and 100")
	ErrInvalidEmail         = errors.New("invalid customer email")
	ErrProductNotFound      = errors.New("product not found")
	ErrSaleNotFound         = errors.New("sale not found")
)

// CheckoutRequest carries what the cashier enters at checkout.
type CheckoutRequest struct {
	PaymentMethod   PaymentMethod
	DiscountPercent decimal.Decimal
	CustomerName    string
	CustomerPhone   string
	CustomerEmail   string
	Notes           string
	// IdempotencyKey lets a retried submission return the original sale.
	IdempotencyKey string
}

// SaleItemRequest is one line of the sale payload. Monetary fields are
// plain numbers rounded to cents.
type SaleItemRequest struct {
	ProductID      int     `json:"product_id"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	DiscountAmount float64 `json:"discount_amount"`
	LineTotal      float64 `json:"line_total"`
}

// SaleRequest is the payload submitted to the sale backend.
type SaleRequest struct {
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
	Items          []SaleItemRequest `json:"items"`
	Subtotal       float64           `json:"subtotal"`
	TaxAmount      float64           `json:"tax_amount"`
	DiscountAmount float64           `json:"discount_amount"`
	TotalAmount    float64           `json:"total_amount"`
	PaymentMethod  PaymentMethod     `json:"payment_method"`
	CustomerName   *string           `json:"customer_name,omitempty"`
	CustomerPhone  *string           `json:"customer_phone,omitempty"`
	CustomerEmail  *string           `json:"customer_email,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
}

// Sale is a committed sale as stored by the backend.
type Sale struct {
	ID             int             `json:"id"`
	ReceiptNumber  string          `json:"receipt_number"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	CustomerEmail  string          `json:"customer_email,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Lines          []SaleLine      `json:"lines"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SaleLine is one stored line of a sale.
type SaleLine struct {
	LineNumber     int             `json:"line_number"`
	ProductID      int             `json:"product_id"`
	ProductName    string          `json:"product_name"` // joined from products
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// StockShortage describes one line the backend could not honour.
type StockShortage struct {
	ProductID int `json:"product_id"`
	Requested int `json:"requested"`
	Available int `json:"available"`
}

// InsufficientStockError is returned when a cart was built against stock
// that is no longer available. The cart should be kept so the cashier can
// adjust quantities.
type InsufficientStockError struct {
	Shortages []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("product %d: requested %d, available %d", s.ProductID, s.Requested, s.Available))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// SaleSubmitter persists a projected sale.
type SaleSubmitter interface {
	SubmitSale(ctx context.Context, req *SaleRequest) (*Sale, error)
}
