package app

import (
	"context"
	"errors"

	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

var (
	// ErrStockLimit is returned when a cart mutation would exceed the stock
	// recorded in the product snapshot.
	ErrStockLimit = errors.New("cannot exceed available stock")
	// ErrCatalogUnavailable is returned by catalog-backed operations when no
	// backend database is configured.
	ErrCatalogUnavailable = errors.New("product catalog is not available")
	// ErrBackendUnavailable is returned when the sale backend is missing or
	// its circuit breaker is open. The cart is kept.
	ErrBackendUnavailable = errors.New("sale backend is unavailable, try again shortly")
	// ErrInvalidQuantity is returned when an add asks for fewer than one unit.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, HTTP
// bridge) call. It owns the session cart and the display currency and
// decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ── Currency ──

	// ListCurrencies returns every registered currency, sorted by code.
	ListCurrencies() *CurrencyListResult
	ActiveCurrency() core.Currency
	// SetActiveCurrency switches and persists the display currency.
	SetActiveCurrency(ctx context.Context, code string) (*CurrencyListResult, error)
	// Convert converts an amount between two registered currencies.
	Convert(req ConvertRequest) (*ConvertResult, error)
	// FormatAmount renders a base-currency amount, in req.Currency or the active one.
	FormatAmount(req FormatRequest) (string, error)
	// ParseAmount reads a display string in the active currency; bad input yields zero.
	ParseAmount(text string) decimal.Decimal

	// ── Catalog ──

	ListProducts(ctx context.Context) (*ProductListResult, error)
	GetProduct(ctx context.Context, productID int) (*core.Product, error)

	// ── Cart ──

	GetCart() *CartResult
	// AddProduct looks productID up in the catalog and adds quantity units.
	// The add is all-or-nothing: over the stock ceiling nothing changes.
	AddProduct(ctx context.Context, productID, quantity int) (*CartResult, error)
	// AddSnapshot validates a caller-supplied product snapshot and adds
	// quantity units, all-or-nothing.
	AddSnapshot(in core.ProductInput, quantity int) (*CartResult, error)
	RemoveItem(productID int) *CartResult
	// UpdateQuantity sets a line's quantity; zero or less removes it.
	UpdateQuantity(productID, quantity int) (*CartResult, error)
	UpdatePrice(productID int, price decimal.Decimal) (*CartResult, error)
	ClearCart() *CartResult

	// ── Checkout ──

	// Checkout projects the cart into a sale and submits it. On success the
	// sold quantities are taken off the cart; on any error it is left intact.
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	GetSale(ctx context.Context, receiptNumber string) (*core.Sale, error)
}
