package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"pos-terminal/internal/core"
)

type scriptedSubmitter struct {
	errs  []error
	calls int
}

func (s *scriptedSubmitter) SubmitSale(context.Context, *core.SaleRequest) (*core.Sale, error) {
	var err error
	if s.calls < len(s.errs) {
		err = s.errs[s.calls]
	}
	s.calls++
	if err != nil {
		return nil, err
	}
	return &core.Sale{ReceiptNumber: "R-000001"}, nil
}

func TestBreakerSubmitter_RecoversAfterTimeout(t *testing.T) {
	down := errors.New("connection reset")
	next := &scriptedSubmitter{errs: []error{down, down}}
	b := newBreakerSubmitter(next, 2, 20*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := b.SubmitSale(ctx, &core.SaleRequest{}); !errors.Is(err, down) {
			t.Fatalf("call %d: err = %v, want backend error", i, err)
		}
	}
	if _, err := b.SubmitSale(ctx, &core.SaleRequest{}); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("open breaker: err = %v, want ErrBackendUnavailable", err)
	}
	if next.calls != 2 {
		t.Errorf("backend called %d times while open, want 2", next.calls)
	}

	time.Sleep(40 * time.Millisecond)
	sale, err := b.SubmitSale(ctx, &core.SaleRequest{})
	if err != nil {
		t.Fatalf("half-open probe: %v", err)
	}
	if sale.ReceiptNumber != "R-000001" {
		t.Errorf("receipt = %q", sale.ReceiptNumber)
	}
}

func TestBreakerSubmitter_RejectionsDoNotTrip(t *testing.T) {
	rejection := &core.InsufficientStockError{Shortages: []core.StockShortage{{ProductID: 1, Requested: 2}}}
	next := &scriptedSubmitter{errs: []error{rejection, rejection, rejection, core.ErrEmptyCart}}
	b := newBreakerSubmitter(next, 2, time.Minute)

	for i := 0; i < 4; i++ {
		_, err := b.SubmitSale(context.Background(), &core.SaleRequest{})
		if errors.Is(err, ErrBackendUnavailable) {
			t.Fatalf("call %d: breaker opened on a sale rejection", i)
		}
	}
	if _, err := b.SubmitSale(context.Background(), &core.SaleRequest{}); err != nil {
		t.Errorf("err = %v, want nil", err)
	}
	if next.calls != 5 {
		t.Errorf("calls = %d, want 5", next.calls)
	}
}
