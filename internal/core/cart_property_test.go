package core_test

import (
	"context"
	"testing"

	"pos-terminal/internal/core"
	"pos-terminal/internal/storage"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

// cartOp is one random mutation applied to a cart under test.
type cartOp struct {
	Kind      int // 0 add, 1 remove, 2 update quantity, 3 update price
	ProductID int
	Quantity  int
	PriceCent int64
}

func genCartOp() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 3),
		gen.IntRange(1, 4),
		gen.IntRange(-2, 8),
		gen.Int64Range(0, 100000),
	).Map(func(v []interface{}) cartOp {
		return cartOp{Kind: v[0].(int), ProductID: v[1].(int), Quantity: v[2].(int), PriceCent: v[3].(int64)}
	})
}

// propertyCatalog mixes prices, tax settings and stock levels.
var propertyCatalog = map[int]core.Product{
	1: {ID: 1, SellingPrice: decimal.RequireFromString("9.99"), TaxRate: decimal.NewFromInt(15), IsTaxable: true, AvailableStock: 3},
	2: {ID: 2, SellingPrice: decimal.RequireFromString("0.10"), TaxRate: decimal.NewFromInt(7), IsTaxable: true, AvailableStock: 1},
	3: {ID: 3, SellingPrice: decimal.RequireFromString("125"), TaxRate: decimal.NewFromInt(20), IsTaxable: false, AvailableStock: 6},
	4: {ID: 4, SellingPrice: decimal.RequireFromString("3.333"), TaxRate: decimal.RequireFromString("12.5"), IsTaxable: true, AvailableStock: 0},
}

func apply(cart *core.Cart, op cartOp) {
	switch op.Kind {
	case 0:
		cart.AddItem(propertyCatalog[op.ProductID])
	case 1:
		cart.RemoveItem(op.ProductID)
	case 2:
		cart.UpdateQuantity(op.ProductID, op.Quantity)
	case 3:
		_ = cart.UpdatePrice(op.ProductID, decimal.New(op.PriceCent, -2))
	}
}

// Property: no sequence of mutations pushes a line above its product's stock.
func TestCartProperty_QuantityCeiling(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("quantity never exceeds available stock", prop.ForAll(
		func(ops []cartOp) bool {
			cart := core.NewCart()
			for _, op := range ops {
				before := cart.Items()
				apply(cart, op)
				for _, it := range cart.Items() {
					if it.Quantity < 1 || it.Quantity > propertyCatalog[it.Product.ID].AvailableStock {
						return false
					}
				}
				// A rejected add leaves the cart exactly as it was.
				if op.Kind == 0 {
					p := propertyCatalog[op.ProductID]
					var prior int
					for _, it := range before {
						if it.Product.ID == p.ID {
							prior = it.Quantity
						}
					}
					if prior+1 > p.AvailableStock && len(cart.Items()) != len(before) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(genCartOp()),
	))

	properties.TestingRun(t)
}

// Property: totals always match a from-scratch recomputation over the lines.
func TestCartProperty_TotalConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total equals sum of line totals", prop.ForAll(
		func(ops []cartOp) bool {
			cart := core.NewCart()
			for _, op := range ops {
				apply(cart, op)
			}
			sum := decimal.Zero
			count := 0
			for _, it := range cart.Items() {
				tax := decimal.Zero
				if it.Product.IsTaxable {
					tax = it.UnitPrice.Mul(it.Product.TaxRate).Div(decimal.NewFromInt(100))
				}
				want := decimal.NewFromInt(int64(it.Quantity)).Mul(it.UnitPrice.Add(tax))
				if !it.LineTotal.Equal(want) || !it.TaxAmount.Equal(tax) {
					return false
				}
				sum = sum.Add(it.LineTotal)
				count += it.Quantity
			}
			totals := cart.Totals()
			return totals.Total.Equal(sum) && totals.ItemCount == count
		},
		gen.SliceOf(genCartOp()),
	))

	properties.TestingRun(t)
}

// Property: base-currency parse(format(x)) == x at cent precision.
func TestCurrencyProperty_FormatParseRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	svc := core.NewCurrencyService(context.Background(), core.DefaultRegistry(), storage.NewMemoryStore())

	properties.Property("format then parse is identity for cents", prop.ForAll(
		func(cents int64) bool {
			x := decimal.New(cents, -2)
			return svc.Parse(svc.Format(x, core.FormatOptions{})).Equal(x)
		},
		gen.Int64Range(-1_000_000_000, 1_000_000_000),
	))

	properties.TestingRun(t)
}
