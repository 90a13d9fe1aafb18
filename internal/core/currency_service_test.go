package core_test

import (
	"context"
	"errors"
	"testing"

	"pos-terminal/internal/core"
	"pos-terminal/internal/storage"

	"github.com/shopspring/decimal"
)

// failingStore rejects every write.
type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func newCurrencyService(t *testing.T) (*core.CurrencyService, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return core.NewCurrencyService(context.Background(), core.DefaultRegistry(), store), store
}

func TestCurrency_FormatBase(t *testing.T) {
	svc, _ := newCurrencyService(t)

	tests := []struct {
		amount string
		opts   core.FormatOptions
		want   string
	}{
		{"0", core.FormatOptions{}, "$0.00"},
		{"1000", core.FormatOptions{}, "$1,000.00"},
		{"1234567.891", core.FormatOptions{}, "$1,234,567.89"},
		{"0.005", core.FormatOptions{}, "$0.01"},
		{"-1234.5", core.FormatOptions{}, "-$1,234.50"},
		{"12", core.FormatOptions{HideSymbol: true}, "12.00"},
		{"12", core.FormatOptions{ShowCode: true}, "$12.00 USD"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := svc.Format(dec(tt.amount), tt.opts); got != tt.want {
				t.Errorf("Format(%s) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestCurrency_SwitchScenario(t *testing.T) {
	svc, _ := newCurrencyService(t)
	ctx := context.Background()

	if err := svc.SetActiveCurrency(ctx, "XOF"); err != nil {
		t.Fatalf("SetActiveCurrency failed: %v", err)
	}
	if got := svc.Format(dec("1"), core.FormatOptions{}); got != "600 FCFA" {
		t.Errorf("expected %q, got %q", "600 FCFA", got)
	}
	if got := svc.Format(dec("1000"), core.FormatOptions{}); got != "600 000 FCFA" {
		t.Errorf("expected %q, got %q", "600 000 FCFA", got)
	}

	if err := svc.SetActiveCurrency(ctx, "USD"); err != nil {
		t.Fatalf("SetActiveCurrency failed: %v", err)
	}
	if got := svc.Format(dec("1000"), core.FormatOptions{}); got != "$1,000.00" {
		t.Errorf("expected %q, got %q", "$1,000.00", got)
	}
}

func TestCurrency_FormatInSuffixSymbol(t *testing.T) {
	svc, _ := newCurrencyService(t)

	got, err := svc.FormatIn(dec("1234.5"), "EUR", core.FormatOptions{})
	if err != nil {
		t.Fatalf("FormatIn failed: %v", err)
	}
	if got != "1.135,74 €" {
		t.Errorf("expected %q, got %q", "1.135,74 €", got)
	}

	var unknown *core.UnknownCurrencyError
	if _, err := svc.FormatIn(dec("1"), "ZZZ", core.FormatOptions{}); !errors.As(err, &unknown) {
		t.Errorf("expected UnknownCurrencyError, got %v", err)
	}
}

func TestCurrency_Parse(t *testing.T) {
	svc, _ := newCurrencyService(t)

	tests := []struct {
		in   string
		want string
	}{
		{"$1,234.56", "1234.56"},
		{"1234.56", "1234.56"},
		{"-$12.50", "-12.5"},
		{"  $3.00 USD ", "3"},
		{"", "0"},
		{"abc", "0"},
		{"$1.2.3", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := svc.Parse(tt.in); !got.Equal(dec(tt.want)) {
				t.Errorf("Parse(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	if err := svc.SetActiveCurrency(context.Background(), "EUR"); err != nil {
		t.Fatal(err)
	}
	if got := svc.Parse("1.135,74 €"); !got.Equal(dec("1135.74")) {
		t.Errorf("EUR parse: got %s", got)
	}
}

func TestCurrency_FormatParseRoundTrip(t *testing.T) {
	svc, _ := newCurrencyService(t)
	for _, s := range []string{"0", "-0.01", "-987654.32", "1", "9.99", "10", "1000", "12345.67", "10000000"} {
		x := dec(s)
		if got := svc.Parse(svc.Format(x, core.FormatOptions{})); !got.Equal(x) {
			t.Errorf("round trip of %s gave %s", s, got)
		}
	}
}

func TestCurrency_Convert(t *testing.T) {
	svc, _ := newCurrencyService(t)

	got, err := svc.Convert(dec("100"), "USD", "EUR")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !got.Equal(dec("92")) {
		t.Errorf("expected 92, got %s", got)
	}

	got, _ = svc.Convert(dec("600"), "XOF", "NGN")
	if !got.Equal(dec("1550")) {
		t.Errorf("expected 1550, got %s", got)
	}

	same, _ := svc.Convert(dec("7.123"), "GBP", "GBP")
	if !same.Equal(dec("7.123")) {
		t.Errorf("same-currency conversion should be identity, got %s", same)
	}

	var unknown *core.UnknownCurrencyError
	if _, err := svc.Convert(dec("1"), "USD", "ZZZ"); !errors.As(err, &unknown) || unknown.Code != "ZZZ" {
		t.Errorf("expected UnknownCurrencyError for ZZZ, got %v", err)
	}
	if _, err := svc.Convert(dec("1"), "ZZZ", "ZZZ"); !errors.As(err, &unknown) {
		t.Errorf("unknown code must fail even when from == to, got %v", err)
	}
}

func TestCurrency_ConvertRoundTripAllPairs(t *testing.T) {
	svc, _ := newCurrencyService(t)
	tolerance := dec("0.000000001")
	x := dec("1234.56")

	for a := range svc.ListCurrencies() {
		for b := range svc.ListCurrencies() {
			there, err := svc.Convert(x, a, b)
			if err != nil {
				t.Fatalf("Convert %s->%s: %v", a, b, err)
			}
			back, err := svc.Convert(there, b, a)
			if err != nil {
				t.Fatalf("Convert %s->%s: %v", b, a, err)
			}
			if back.Sub(x).Abs().GreaterThan(tolerance) {
				t.Errorf("%s->%s->%s drifted: %s", a, b, a, back)
			}
		}
	}
}

func TestCurrency_SetActiveUnknownLeavesStateUnchanged(t *testing.T) {
	svc, store := newCurrencyService(t)
	ctx := context.Background()

	_ = svc.SetActiveCurrency(ctx, "GBP")
	err := svc.SetActiveCurrency(ctx, "XYZ")
	var unknown *core.UnknownCurrencyError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCurrencyError, got %v", err)
	}
	if svc.ActiveCurrency().Code != "GBP" {
		t.Errorf("active currency changed to %s", svc.ActiveCurrency().Code)
	}
	raw, _ := store.Get(ctx, storage.KeyActiveCurrency)
	if string(raw) != "GBP" {
		t.Errorf("stored code should stay GBP, got %q", raw)
	}
}

func TestCurrency_PersistenceAndRestore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		stored string
		want   string
	}{
		{"nothing stored", "", "USD"},
		{"known code", "KES", "KES"},
		{"lowercase code", "eur", "EUR"},
		{"unknown code", "ZZZ", "USD"},
		{"garbage", "{\"x\":1}", "USD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			if tt.stored != "" {
				_ = store.Set(ctx, storage.KeyActiveCurrency, []byte(tt.stored))
			}
			svc := core.NewCurrencyService(ctx, core.DefaultRegistry(), store)
			if got := svc.ActiveCurrency().Code; got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	store := storage.NewMemoryStore()
	svc := core.NewCurrencyService(ctx, core.DefaultRegistry(), store)
	if err := svc.SetActiveCurrency(ctx, "ghs"); err != nil {
		t.Fatal(err)
	}
	restarted := core.NewCurrencyService(ctx, core.DefaultRegistry(), store)
	if restarted.ActiveCurrency().Code != "GHS" {
		t.Errorf("expected GHS after restart, got %s", restarted.ActiveCurrency().Code)
	}
}

func TestCurrency_PersistFailureKeepsActive(t *testing.T) {
	ctx := context.Background()
	svc := core.NewCurrencyService(ctx, core.DefaultRegistry(), failingStore{storage.NewMemoryStore()})

	if err := svc.SetActiveCurrency(ctx, "EUR"); err == nil {
		t.Fatal("expected persistence error")
	}
	if svc.ActiveCurrency().Code != "USD" {
		t.Errorf("active currency should remain USD, got %s", svc.ActiveCurrency().Code)
	}
}

func TestCurrency_OnChange(t *testing.T) {
	svc, _ := newCurrencyService(t)
	ctx := context.Background()

	var seen []string
	cancel := svc.OnChange(func(c core.Currency) {
		seen = append(seen, c.Code)
		// Listeners may read the service without deadlocking.
		_ = svc.ActiveCurrency()
	})

	_ = svc.SetActiveCurrency(ctx, "EUR")
	_ = svc.SetActiveCurrency(ctx, "nope")
	cancel()
	_ = svc.SetActiveCurrency(ctx, "USD")

	if len(seen) != 1 || seen[0] != "EUR" {
		t.Errorf("expected exactly one EUR notification, got %v", seen)
	}
}

func TestRegistry_Validation(t *testing.T) {
	usd := core.Currency{Code: "USD", Symbol: "$", DecimalPlaces: 2, Rate: decimal.NewFromInt(1), DecimalSeparator: "."}

	tests := []struct {
		name       string
		base       string
		currencies []core.Currency
	}{
		{"missing base", "EUR", []core.Currency{usd}},
		{"base rate not 1", "USD", []core.Currency{{Code: "USD", DecimalPlaces: 0, Rate: dec("2")}}},
		{"duplicate code", "USD", []core.Currency{usd, usd}},
		{"zero rate", "USD", []core.Currency{usd, {Code: "ABC", Rate: decimal.Zero}}},
		{"same separators", "USD", []core.Currency{usd, {Code: "ABC", Rate: dec("2"), DecimalPlaces: 2, DecimalSeparator: ",", GroupingSeparator: ","}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := core.NewRegistry(tt.base, tt.currencies...); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRegistry_Rebase(t *testing.T) {
	r, err := core.DefaultRegistry().Rebase("EUR")
	if err != nil {
		t.Fatalf("Rebase failed: %v", err)
	}
	if r.Base().Code != "EUR" || !r.Base().Rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("unexpected base %+v", r.Base())
	}
	usd, _ := r.Lookup("USD")
	if got := usd.Rate.Mul(dec("0.92")).Round(10); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("USD rate against EUR should be 1/0.92, got %s", usd.Rate)
	}
}
