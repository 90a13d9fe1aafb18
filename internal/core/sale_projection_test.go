package core_test

import (
	"errors"
	"math"
	"testing"

	"pos-terminal/internal/core"
)

func TestBuildSaleRequest_DiscountBeforeTax(t *testing.T) {
	cart := core.NewCart()
	cart.AddItem(testProduct(1, "100", "15", true, 3))

	req, err := core.BuildSaleRequest(cart.Items(), core.CheckoutRequest{
		PaymentMethod:   core.PaymentCash,
		DiscountPercent: dec("10"),
	})
	if err != nil {
		t.Fatalf("BuildSaleRequest failed: %v", err)
	}
	if req.Subtotal != 100 || req.DiscountAmount != 10 || req.TaxAmount != 13.5 || req.TotalAmount != 103.5 {
		t.Errorf("unexpected totals: subtotal=%v discount=%v tax=%v total=%v",
			req.Subtotal, req.DiscountAmount, req.TaxAmount, req.TotalAmount)
	}
	if len(req.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(req.Items))
	}
	line := req.Items[0]
	if line.ProductID != 1 || line.Quantity != 1 || line.UnitPrice != 100 || line.DiscountAmount != 10 || line.LineTotal != 103.5 {
		t.Errorf("unexpected line %+v", line)
	}
}

func TestBuildSaleRequest_NoDiscount(t *testing.T) {
	cart := core.NewCart()
	p := testProduct(1, "10.00", "10", true, 5)
	cart.AddItem(p)
	cart.AddItem(p)
	cart.AddItem(testProduct(2, "3.333", "0", false, 5))

	req, err := core.BuildSaleRequest(cart.Items(), core.CheckoutRequest{
		PaymentMethod: core.PaymentCard,
		CustomerName:  "  Ada  ",
		CustomerEmail: "ada@example.com",
	})
	if err != nil {
		t.Fatalf("BuildSaleRequest failed: %v", err)
	}
	if req.Subtotal != 23.33 || req.TaxAmount != 2 || req.DiscountAmount != 0 || req.TotalAmount != 25.33 {
		t.Errorf("unexpected totals %+v", req)
	}
	var sum float64
	for _, it := range req.Items {
		sum += it.LineTotal
	}
	if math.Abs(sum-25.33) > 1e-9 {
		t.Errorf("line totals should add up to the total, got %v", sum)
	}
	if req.CustomerName == nil || *req.CustomerName != "Ada" {
		t.Errorf("expected trimmed customer name, got %v", req.CustomerName)
	}
	if req.CustomerPhone != nil || req.Notes != nil {
		t.Error("blank optional fields should be omitted")
	}
}

func TestBuildSaleRequest_Validation(t *testing.T) {
	cart := core.NewCart()
	cart.AddItem(testProduct(1, "1", "0", false, 1))
	items := cart.Items()

	tests := []struct {
		name  string
		items []core.CartItem
		req   core.CheckoutRequest
		want  error
	}{
		{"empty cart", nil, core.CheckoutRequest{PaymentMethod: core.PaymentCash}, core.ErrEmptyCart},
		{"unknown payment method", items, core.CheckoutRequest{PaymentMethod: "cheque"}, core.ErrInvalidPaymentMethod},
		{"negative discount", items, core.CheckoutRequest{PaymentMethod: core.PaymentCash, DiscountPercent: dec("-1")}, core.ErrInvalidDiscount},
		{"discount over 100", items, core.CheckoutRequest{PaymentMethod: core.PaymentCash, DiscountPercent: dec("100.5")}, core.ErrInvalidDiscount},
		{"bad email", items, core.CheckoutRequest{PaymentMethod: core.PaymentMobileMoney, CustomerEmail: "not-an-email"}, core.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := core.BuildSaleRequest(tt.items, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestBuildSaleRequest_FullDiscount(t *testing.T) {
	cart := core.NewCart()
	cart.AddItem(testProduct(1, "50", "20", true, 1))

	req, err := core.BuildSaleRequest(cart.Items(), core.CheckoutRequest{
		PaymentMethod:   core.PaymentBankTransfer,
		DiscountPercent: dec("100"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if req.TotalAmount != 0 || req.TaxAmount != 0 || req.DiscountAmount != 50 {
		t.Errorf("a full discount should zero the sale, got %+v", req)
	}
}

func TestInsufficientStockError_Message(t *testing.T) {
	err := &core.InsufficientStockError{Shortages: []core.StockShortage{
		{ProductID: 1, Requested: 3, Available: 1},
		{ProductID: 9, Requested: 2, Available: 0},
	}}
	want := "insufficient stock: product 1: requested 3, available 1; product 9: requested 2, available 0"
	if err.Error() != want {
		t.Errorf("got %q", err.Error())
	}
}
