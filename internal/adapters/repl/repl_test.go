package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"pos-terminal/internal/app"
	"pos-terminal/internal/core"
	"pos-terminal/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type memCatalog map[int]core.Product

func (m memCatalog) ListProducts(context.Context) ([]core.Product, error) {
	out := make([]core.Product, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	return out, nil
}

func (m memCatalog) GetProduct(_ context.Context, id int) (*core.Product, error) {
	p, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, core.ErrProductNotFound)
	}
	return &p, nil
}

func (m memCatalog) Invalidate(...int) {}

type memSales struct {
	last *core.SaleRequest
}

func (m *memSales) SubmitSale(_ context.Context, req *core.SaleRequest) (*core.Sale, error) {
	m.last = req
	return &core.Sale{ID: 1, ReceiptNumber: "R-000001", PaymentMethod: req.PaymentMethod}, nil
}

func (m *memSales) GetSale(_ context.Context, receipt string) (*core.Sale, error) {
	if receipt != "R-000001" || m.last == nil {
		return nil, core.ErrSaleNotFound
	}
	return &core.Sale{
		ReceiptNumber: receipt,
		PaymentMethod: m.last.PaymentMethod,
		Subtotal:      decimal.NewFromFloat(m.last.Subtotal),
		TaxAmount:     decimal.NewFromFloat(m.last.TaxAmount),
		TotalAmount:   decimal.NewFromFloat(m.last.TotalAmount),
		Lines:         []core.SaleLine{{LineNumber: 1, ProductID: 1, ProductName: "Water", Quantity: 1, LineTotal: decimal.NewFromFloat(m.last.TotalAmount)}},
	}, nil
}

func runScript(t *testing.T, sales *memSales, script ...string) string {
	t.Helper()
	out, _ := runScriptWithService(t, sales, script...)
	return out
}

func runScriptWithService(t *testing.T, sales *memSales, script ...string) (string, app.ApplicationService) {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	currency := core.NewCurrencyService(ctx, core.DefaultRegistry(), store)
	cart := core.RestoreCart(ctx, store)
	opts := app.Options{Catalog: memCatalog{
		1: {ID: 1, Name: "Water", SKU: "WTR-1", SellingPrice: decimal.NewFromInt(10), TaxRate: decimal.NewFromInt(10), IsTaxable: true, AvailableStock: 3},
	}}
	if sales != nil {
		opts.Sales = sales
	}
	svc := app.NewAppService(currency, cart, opts)

	var out bytes.Buffer
	reader := bufio.NewReader(strings.NewReader(strings.Join(script, "\n") + "\n"))
	Run(ctx, svc, reader, &out)
	return out.String(), svc
}

func TestRun_CartCommands(t *testing.T) {
	out := runScript(t, nil,
		"1",
		"abc",
		"/add 1 5",
		"/qty 1 2",
		"/currency xof",
		"/rm 1",
		"/nope",
		"/exit",
	)

	assert.Contains(t, out, "$11.00")
	assert.Contains(t, out, `Not a product id: "abc"`)
	assert.Contains(t, out, "Error: cannot exceed available stock")
	assert.Contains(t, out, "Display currency set to XOF")
	assert.Contains(t, out, "13 200 FCFA")
	assert.Contains(t, out, "Cart is empty.")
	assert.Contains(t, out, "Unknown command: /nope")
	assert.Contains(t, out, "Goodbye!")
}

func TestRun_AddOverStockLeavesCartUnchanged(t *testing.T) {
	out, svc := runScriptWithService(t, nil,
		"1",
		"/add 1 5",
		"/add 1 0",
		"/exit",
	)

	assert.Contains(t, out, "Error: cannot exceed available stock")
	assert.Contains(t, out, "Error: invalid quantity: 0")
	cart := svc.GetCart()
	if assert.Len(t, cart.Items, 1) {
		assert.Equal(t, 1, cart.Items[0].Quantity)
	}

	out, svc = runScriptWithService(t, nil, "/add 1 3", "/exit")
	assert.NotContains(t, out, "Error:")
	assert.Equal(t, 3, svc.GetCart().Totals.ItemCount)
}

func TestRun_PriceOverrideInDisplayCurrency(t *testing.T) {
	out := runScript(t, nil,
		"/currency XOF",
		"1",
		"/price 1 3 000",
		"/price 1 free",
		"/exit",
	)

	assert.Contains(t, out, "3 300 FCFA")
	assert.Contains(t, out, "Error: invalid amount: free")
}

func TestRun_Checkout(t *testing.T) {
	sales := &memSales{}
	out := runScript(t, sales,
		"1",
		"/checkout",
		"card",
		"10",
		"Ama",
		"",
		"",
		"",
		"y",
		"/sale r-000001",
		"/cart",
		"/exit",
	)

	assert.Contains(t, out, "Receipt: R-000001")
	assert.Contains(t, out, "TOTAL:    $9.90")
	assert.Contains(t, out, "DISCOUNT: -$1.00")
	assert.Contains(t, out, "RECEIPT:  R-000001")
	assert.Contains(t, out, "Cart is empty.")
	if assert.NotNil(t, sales.last) {
		assert.Equal(t, core.PaymentCard, sales.last.PaymentMethod)
		assert.Equal(t, "Ama", *sales.last.CustomerName)
		assert.Nil(t, sales.last.CustomerEmail)
	}
}

func TestRun_CheckoutDeclined(t *testing.T) {
	sales := &memSales{}
	out := runScript(t, sales,
		"1",
		"/checkout",
		"",
		"",
		"",
		"",
		"",
		"",
		"n",
		"/exit",
	)

	assert.Contains(t, out, "Checkout cancelled. Cart kept.")
	assert.Nil(t, sales.last)
}

func TestRun_EndOfInput(t *testing.T) {
	out := runScript(t, nil, "/checkout")
	assert.Contains(t, out, "Error: cart is empty")
	assert.NotContains(t, out, "Goodbye!")
}
