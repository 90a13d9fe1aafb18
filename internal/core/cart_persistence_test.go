package core_test

import (
	"context"
	"encoding/json"
	"testing"

	"pos-terminal/internal/core"
	"pos-terminal/internal/storage"
)

func TestCart_PersistAndRestore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	cart := core.RestoreCart(ctx, store)
	if !cart.IsEmpty() {
		t.Fatal("expected empty cart from empty store")
	}
	cart.AddItem(testProduct(1, "10", "10", true, 5))
	cart.AddItem(testProduct(2, "4.50", "0", false, 9))
	cart.UpdateQuantity(1, 3)
	if err := cart.UpdatePrice(2, dec("4")); err != nil {
		t.Fatal(err)
	}

	restored := core.RestoreCart(ctx, store)
	items := restored.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 restored lines, got %d", len(items))
	}
	if items[0].Product.ID != 1 || items[0].Quantity != 3 {
		t.Errorf("unexpected first line %+v", items[0])
	}
	assertDec(t, "overridden price", items[1].UnitPrice, "4")
	assertDec(t, "restored total", restored.Totals().Total, "37")

	// The restored cart keeps persisting.
	restored.Clear()
	again := core.RestoreCart(ctx, store)
	if !again.IsEmpty() {
		t.Error("expected cleared cart to persist as empty")
	}
}

func TestRestoreCart_BadData(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{"not json", "{{{", 0},
		{"wrong shape", `{"items": 1}`, 0},
		{"empty list", `[]`, 0},
		{"drops invalid lines", `[
			{"product":{"id":1,"selling_price":"2","tax_rate":"0","available_stock":5},"quantity":2,"unit_price":"2"},
			{"product":{"id":0},"quantity":1,"unit_price":"1"},
			{"product":{"id":3},"quantity":0,"unit_price":"1"},
			{"product":{"id":1},"quantity":1,"unit_price":"9"}
		]`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			_ = store.Set(ctx, storage.KeyCart, []byte(tt.payload))
			cart := core.RestoreCart(ctx, store)
			if got := len(cart.Items()); got != tt.want {
				t.Errorf("expected %d lines, got %d", tt.want, got)
			}
		})
	}
}

func TestRestoreCart_RecomputesDerivedValues(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	// A tampered line total must not survive a restore.
	payload := `[{"product":{"id":7,"selling_price":"5","tax_rate":"20","is_taxable":true,"available_stock":4},
		"quantity":2,"unit_price":"5","tax_amount":"0","line_total":"1"}]`
	_ = store.Set(ctx, storage.KeyCart, []byte(payload))

	item, ok := core.RestoreCart(ctx, store).Item(7)
	if !ok {
		t.Fatal("expected product 7 restored")
	}
	assertDec(t, "tax", item.TaxAmount, "1")
	assertDec(t, "line total", item.LineTotal, "12")
}

func TestPersistCart_WritesJSON(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	cart := core.NewCart(core.PersistCart(store))
	cart.AddItem(testProduct(4, "1.25", "0", false, 2))

	raw, err := store.Get(ctx, storage.KeyCart)
	if err != nil {
		t.Fatalf("expected cart to be stored: %v", err)
	}
	var items []core.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		t.Fatalf("stored cart is not valid JSON: %v", err)
	}
	if len(items) != 1 || items[0].Product.ID != 4 {
		t.Errorf("unexpected stored items %+v", items)
	}
}

func TestPersistCart_StoreFailureDoesNotBreakCart(t *testing.T) {
	cart := core.NewCart(core.PersistCart(failingStore{storage.NewMemoryStore()}))
	if !cart.AddItem(testProduct(1, "1", "0", false, 1)) {
		t.Error("add should succeed even when persistence fails")
	}
}
