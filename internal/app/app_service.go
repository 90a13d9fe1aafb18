package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"pos-terminal/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type appService struct {
	currency   *core.CurrencyService
	cart       *core.Cart
	catalog    core.CatalogService // nil when no backend is configured
	sales      core.SaleSubmitter  // nil when no backend is configured
	saleLookup core.SaleService    // nil when no backend is configured
	revalidate bool
}

// Options wires the optional backend collaborators.
type Options struct {
	Catalog core.CatalogService
	// Sales submits and fetches sales. It is wrapped in a circuit breaker.
	Sales core.SaleService
	// RevalidateStock re-reads every cart line from the catalog before
	// submitting a checkout.
	RevalidateStock bool
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(currency *core.CurrencyService, cart *core.Cart, opts Options) ApplicationService {
	s := &appService{
		currency:   currency,
		cart:       cart,
		catalog:    opts.Catalog,
		revalidate: opts.RevalidateStock,
	}
	if opts.Sales != nil {
		s.sales = NewBreakerSubmitter(opts.Sales)
		s.saleLookup = opts.Sales
	}
	return s
}

// ── Currency ─────────────────────────────────────────────────────────────────

func (s *appService) ListCurrencies() *CurrencyListResult {
	all := s.currency.ListCurrencies()
	list := make([]core.Currency, 0, len(all))
	for _, c := range all {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return &CurrencyListResult{
		Currencies: list,
		Base:       s.currency.BaseCurrency().Code,
		Active:     s.currency.ActiveCurrency().Code,
	}
}

func (s *appService) ActiveCurrency() core.Currency {
	return s.currency.ActiveCurrency()
}

func (s *appService) SetActiveCurrency(ctx context.Context, code string) (*CurrencyListResult, error) {
	if err := s.currency.SetActiveCurrency(ctx, code); err != nil {
		return nil, err
	}
	return s.ListCurrencies(), nil
}

func (s *appService) Convert(req ConvertRequest) (*ConvertResult, error) {
	from := strings.ToUpper(strings.TrimSpace(req.From))
	to := strings.ToUpper(strings.TrimSpace(req.To))
	amount, err := s.currency.Convert(req.Amount, from, to)
	if err != nil {
		return nil, err
	}
	// FormatIn expects base units; convert back from the target rate.
	inBase, err := s.currency.Convert(amount, to, s.currency.BaseCurrency().Code)
	if err != nil {
		return nil, err
	}
	formatted, err := s.currency.FormatIn(inBase, to, core.FormatOptions{})
	if err != nil {
		return nil, err
	}
	return &ConvertResult{Amount: amount, From: from, To: to, Formatted: formatted}, nil
}

func (s *appService) FormatAmount(req FormatRequest) (string, error) {
	opts := core.FormatOptions{HideSymbol: req.HideSymbol, ShowCode: req.ShowCode}
	if req.Currency == "" {
		return s.currency.Format(req.AmountInBase, opts), nil
	}
	return s.currency.FormatIn(req.AmountInBase, strings.ToUpper(req.Currency), opts)
}

func (s *appService) ParseAmount(text string) decimal.Decimal {
	return s.currency.Parse(text)
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, productID int) (*core.Product, error) {
	if s.catalog == nil {
		return nil, ErrCatalogUnavailable
	}
	return s.catalog.GetProduct(ctx, productID)
}

// ── Cart ─────────────────────────────────────────────────────────────────────

func (s *appService) GetCart() *CartResult {
	return s.cartResult()
}

func (s *appService) AddProduct(ctx context.Context, productID, quantity int) (*CartResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !s.cart.AddItems(*p, quantity) {
		return nil, ErrStockLimit
	}
	return s.cartResult(), nil
}

func (s *appService) AddSnapshot(in core.ProductInput, quantity int) (*CartResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	p, err := in.ToProduct()
	if err != nil {
		return nil, err
	}
	if !s.cart.AddItems(p, quantity) {
		return nil, ErrStockLimit
	}
	return s.cartResult(), nil
}

func (s *appService) RemoveItem(productID int) *CartResult {
	s.cart.RemoveItem(productID)
	return s.cartResult()
}

func (s *appService) UpdateQuantity(productID, quantity int) (*CartResult, error) {
	if quantity > 0 {
		if _, ok := s.cart.Item(productID); !ok {
			return nil, core.ErrItemNotFound
		}
	}
	if !s.cart.UpdateQuantity(productID, quantity) {
		return nil, ErrStockLimit
	}
	return s.cartResult(), nil
}

func (s *appService) UpdatePrice(productID int, price decimal.Decimal) (*CartResult, error) {
	if err := s.cart.UpdatePrice(productID, price); err != nil {
		return nil, err
	}
	return s.cartResult(), nil
}

func (s *appService) ClearCart() *CartResult {
	s.cart.Clear()
	return s.cartResult()
}

func (s *appService) cartResult() *CartResult {
	items := s.cart.Items()
	totals := core.ComputeTotals(items)
	return &CartResult{
		Items:  items,
		Totals: totals,
		Display: CartTotalsDisplay{
			Subtotal:  s.currency.Format(totals.Subtotal, core.FormatOptions{}),
			TaxAmount: s.currency.Format(totals.TaxAmount, core.FormatOptions{}),
			Total:     s.currency.Format(totals.Total, core.FormatOptions{}),
		},
		Currency: s.currency.ActiveCurrency().Code,
		IsEmpty:  len(items) == 0,
	}
}

// ── Checkout ─────────────────────────────────────────────────────────────────

func (s *appService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, core.ErrEmptyCart
	}
	if s.sales == nil {
		return nil, ErrBackendUnavailable
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}
	saleReq, err := core.BuildSaleRequest(items, core.CheckoutRequest{
		PaymentMethod:   core.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod))),
		DiscountPercent: req.DiscountPercent,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Notes:           req.Notes,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	if s.revalidate && s.catalog != nil {
		if err := s.revalidateStock(ctx, items); err != nil {
			return nil, err
		}
	}

	sale, err := s.sales.SubmitSale(ctx, saleReq)
	if err != nil {
		var stockErr *core.InsufficientStockError
		if errors.As(err, &stockErr) {
			log.Printf("checkout rejected for stale stock: %v", stockErr)
		}
		return nil, err
	}

	// Lines added while the sale was in flight stay in the cart.
	s.cart.RemoveSold(items)
	if s.catalog != nil {
		s.catalog.Invalidate(productIDs(items)...)
	}
	return &CheckoutResult{Sale: sale, Request: saleReq}, nil
}

// revalidateStock re-reads every line's product from the catalog, bypassing
// the snapshot cache, and reports all lines the current stock cannot cover.
func (s *appService) revalidateStock(ctx context.Context, items []core.CartItem) error {
	ids := productIDs(items)
	s.catalog.Invalidate(ids...)

	var shortages []core.StockShortage
	for _, it := range items {
		p, err := s.catalog.GetProduct(ctx, it.Product.ID)
		if err != nil {
			if errors.Is(err, core.ErrProductNotFound) {
				shortages = append(shortages, core.StockShortage{ProductID: it.Product.ID, Requested: it.Quantity})
				continue
			}
			return fmt.Errorf("failed to revalidate stock: %w", err)
		}
		if it.Quantity > p.AvailableStock {
			shortages = append(shortages, core.StockShortage{
				ProductID: it.Product.ID,
				Requested: it.Quantity,
				Available: p.AvailableStock,
			})
		}
	}
	if len(shortages) > 0 {
		return &core.InsufficientStockError{Shortages: shortages}
	}
	return nil
}

func (s *appService) GetSale(ctx context.Context, receiptNumber string) (*core.Sale, error) {
	if s.saleLookup == nil {
		return nil, ErrBackendUnavailable
	}
	return s.saleLookup.GetSale(ctx, strings.ToUpper(strings.TrimSpace(receiptNumber)))
}

func productIDs(items []core.CartItem) []int {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.Product.ID
	}
	return ids
}
