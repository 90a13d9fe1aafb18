package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode"

	"pos-terminal/internal/money"
	"pos-terminal/internal/storage"

	"github.com/shopspring/decimal"
)

// CurrencyService owns the active display currency. It is the single place
// amounts are converted, formatted and parsed for display.
type CurrencyService struct {
	mu        sync.RWMutex
	registry  *Registry
	active    string
	store     storage.Store
	listeners map[int]func(Currency)
	nextID    int
}

// NewCurrencyService restores the persisted active currency from store.
// A missing, unreadable or unregistered stored code falls back to the base
// currency. store may be nil, in which case the selection is not persisted.
func NewCurrencyService(ctx context.Context, registry *Registry, store storage.Store) *CurrencyService {
	s := &CurrencyService{
		registry:  registry,
		active:    registry.Base().Code,
		store:     store,
		listeners: make(map[int]func(Currency)),
	}
	if store == nil {
		return s
	}

	raw, err := store.Get(ctx, storage.KeyActiveCurrency)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("warning: could not read stored currency, using %s: %v", s.active, err)
		}
		return s
	}
	code := strings.ToUpper(strings.TrimSpace(string(raw)))
	if _, err := registry.Lookup(code); err == nil {
		s.active = code
	}
	return s
}

// ListCurrencies returns every registered currency keyed by code.
func (s *CurrencyService) ListCurrencies() map[string]Currency {
	return s.registry.All()
}

// BaseCurrency returns the currency all stored amounts are expressed in.
func (s *CurrencyService) BaseCurrency() Currency {
	return s.registry.Base()
}

// ActiveCurrency returns the currency amounts are currently displayed in.
func (s *CurrencyService) ActiveCurrency() Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, _ := s.registry.Lookup(s.active)
	return c
}

// SetActiveCurrency switches the display currency, persists the choice and
// notifies listeners. On any error the active currency is unchanged.
func (s *CurrencyService) SetActiveCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	c, err := s.registry.Lookup(code)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.store != nil {
		if err := s.store.Set(ctx, storage.KeyActiveCurrency, []byte(code)); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to persist active currency: %w", err)
		}
	}
	s.active = code
	listeners := make([]func(Currency), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
	return nil
}

// OnChange registers fn to be called after every successful
// SetActiveCurrency. The returned func unregisters it.
func (s *CurrencyService) OnChange(fn func(Currency)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Convert converts amount between two registered currencies through the
// base currency: amount / fromRate × toRate.
func (s *CurrencyService) Convert(amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	from, err := s.registry.Lookup(fromCode)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := s.registry.Lookup(toCode)
	if err != nil {
		return decimal.Zero, err
	}
	if from.Code == to.Code {
		return amount, nil
	}
	return money.SafeDivide(amount, from.Rate).Mul(to.Rate), nil
}

// Format renders a base-currency amount in the active currency.
func (s *CurrencyService) Format(amountInBase decimal.Decimal, opts FormatOptions) string {
	c := s.ActiveCurrency()
	return formatAmount(c, amountInBase.Mul(c.Rate), opts)
}

// FormatIn renders a base-currency amount in the given currency.
func (s *CurrencyService) FormatIn(amountInBase decimal.Decimal, code string, opts FormatOptions) (string, error) {
	c, err := s.registry.Lookup(code)
	if err != nil {
		return "", err
	}
	return formatAmount(c, amountInBase.Mul(c.Rate), opts), nil
}

// Parse reads a display string produced for the active currency back into
// a plain number in that currency. It never fails: text that cannot be
// read yields zero, since it is fed from live keystrokes.
func (s *CurrencyService) Parse(text string) decimal.Decimal {
	return parseAmount(s.ActiveCurrency(), text)
}

func formatAmount(c Currency, amount decimal.Decimal, opts FormatOptions) string {
	rounded := amount.Round(c.DecimalPlaces)
	fixed := rounded.Abs().StringFixed(c.DecimalPlaces)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	if !opts.HideSymbol && !c.SymbolAfter {
		b.WriteString(c.Symbol)
	}
	b.WriteString(groupDigits(intPart, c.GroupingSeparator))
	if c.DecimalPlaces > 0 {
		b.WriteString(c.DecimalSeparator)
		b.WriteString(fracPart)
	}
	if !opts.HideSymbol && c.SymbolAfter {
		b.WriteByte(' ')
		b.WriteString(c.Symbol)
	}
	if opts.ShowCode {
		b.WriteByte(' ')
		b.WriteString(c.Code)
	}
	return b.String()
}

// groupDigits inserts sep every three digits from the right.
func groupDigits(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func parseAmount(c Currency, text string) decimal.Decimal {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, c.Code, "")
	if c.Symbol != "" {
		s = strings.ReplaceAll(s, c.Symbol, "")
	}
	if c.GroupingSeparator != "" {
		s = strings.ReplaceAll(s, c.GroupingSeparator, "")
	}
	if c.DecimalSeparator != "" && c.DecimalSeparator != "." {
		s = strings.ReplaceAll(s, c.DecimalSeparator, ".")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
