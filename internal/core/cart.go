package core

import (
	"errors"
	"sync"

	"pos-terminal/internal/money"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound  = errors.New("item not in cart")
	ErrNegativePrice = errors.New("price cannot be negative")
)

// CartHook is called after every successful cart mutation with a copy of
// the resulting item list. Hooks run while the cart is locked, in mutation
// order, and must not call back into the cart.
type CartHook func(items []CartItem)

// Cart is the in-session shopping cart. Lines keep insertion order and
// there is at most one line per product id. Capacity failures are reported
// as false and leave the cart untouched.
type Cart struct {
	mu    sync.Mutex
	items []CartItem
	hooks []CartHook
}

// NewCart returns an empty cart that invokes hooks after each mutation.
func NewCart(hooks ...CartHook) *Cart {
	return &Cart{hooks: hooks}
}

// AddItem adds one unit of p. A new line starts at quantity 1 priced at
// p.SellingPrice; an existing line is incremented. Returns false when the
// resulting quantity would exceed p.AvailableStock.
func (c *Cart) AddItem(p Product) bool {
	return c.AddItems(p, 1)
}

// AddItems adds n units of p in one step. Either all n units are added or,
// when n < 1 or the line would exceed p.AvailableStock, nothing changes.
func (c *Cart) AddItems(p Product, n int) bool {
	if n < 1 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(p.ID); i >= 0 {
		item := c.items[i]
		if item.Quantity+n > p.AvailableStock {
			return false
		}
		item.Quantity += n
		item.Product.AvailableStock = p.AvailableStock
		c.items[i] = priced(item)
		c.changed()
		return true
	}

	if n > p.AvailableStock {
		return false
	}
	c.items = append(c.items, priced(CartItem{
		Product:   p,
		Quantity:  n,
		UnitPrice: p.SellingPrice,
	}))
	c.changed()
	return true
}

// RemoveItem deletes the line for productID. Removing an absent product is
// a no-op.
func (c *Cart) RemoveItem(productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.changed()
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line and counts as success. Returns false when the
// line is absent or qty exceeds the stock recorded on the line.
func (c *Cart) UpdateQuantity(productID, qty int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if qty <= 0 {
		if i >= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.changed()
		}
		return true
	}
	if i < 0 {
		return false
	}
	item := c.items[i]
	if qty > item.Product.AvailableStock {
		return false
	}
	item.Quantity = qty
	c.items[i] = priced(item)
	c.changed()
	return true
}

// UpdatePrice overrides the unit price of an existing line and recomputes
// its tax and total.
func (c *Cart) UpdatePrice(productID int, price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(productID)
	if i < 0 {
		return ErrItemNotFound
	}
	item := c.items[i]
	item.UnitPrice = price
	c.items[i] = priced(item)
	c.changed()
	return nil
}

// RemoveSold takes the quantities in sold off the cart. Lines that were
// added or topped up after sold was read keep the difference.
func (c *Cart) RemoveSold(sold []CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, it := range c.items {
		for _, s := range sold {
			if s.Product.ID == it.Product.ID {
				it.Quantity -= s.Quantity
				break
			}
		}
		if it.Quantity > 0 {
			kept = append(kept, priced(it))
		}
	}
	c.items = kept
	c.changed()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.changed()
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Item returns the line for productID.
func (c *Cart) Item(productID int) (CartItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.items[i], true
	}
	return CartItem{}, false
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// Totals derives the cart aggregates from the current lines.
func (c *Cart) Totals() CartTotals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeTotals(c.items)
}

// ComputeTotals derives aggregates from scratch for any item list.
func ComputeTotals(items []CartItem) CartTotals {
	t := CartTotals{
		Subtotal:  decimal.Zero,
		TaxAmount: decimal.Zero,
		Total:     decimal.Zero,
	}
	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		t.ItemCount += it.Quantity
		t.Subtotal = t.Subtotal.Add(it.UnitPrice.Mul(qty))
		t.TaxAmount = t.TaxAmount.Add(it.TaxAmount.Mul(qty))
		t.Total = t.Total.Add(it.LineTotal)
	}
	return t
}

// priced recomputes the derived fields of item.
func priced(item CartItem) CartItem {
	item.TaxAmount = decimal.Zero
	if item.Product.IsTaxable {
		item.TaxAmount, _ = money.PercentageOf(item.UnitPrice, item.Product.TaxRate)
	}
	item.LineTotal, _ = money.CartLineTotal(item.Quantity, item.UnitPrice.Add(item.TaxAmount))
	return item
}

func (c *Cart) indexOf(productID int) int {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) snapshot() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// changed must be called with c.mu held.
func (c *Cart) changed() {
	if len(c.hooks) == 0 {
		return
	}
	items := c.snapshot()
	for _, h := range c.hooks {
		h(items)
	}
}

// load replaces the item list without invoking hooks. Lines that cannot be
// valid cart lines are dropped and derived values are recomputed.
func (c *Cart) load(items []CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	for _, it := range items {
		if it.Product.ID <= 0 || it.Quantity < 1 || it.UnitPrice.IsNegative() || c.indexOf(it.Product.ID) >= 0 {
			continue
		}
		c.items = append(c.items, priced(it))
	}
}
