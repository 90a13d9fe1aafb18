package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pos-terminal/internal/core"

	"github.com/sony/gobreaker/v2"
)

// breakerSubmitter guards sale submission with a circuit breaker. Only
// backend failures trip it; rejections of the sale itself (stale stock,
// validation) count as successful calls.
type breakerSubmitter struct {
	next core.SaleSubmitter
	cb   *gobreaker.CircuitBreaker[*core.Sale]
}

// NewBreakerSubmitter wraps next in a circuit breaker that opens after five
// consecutive backend failures and probes again after 30 seconds.
func NewBreakerSubmitter(next core.SaleSubmitter) core.SaleSubmitter {
	return newBreakerSubmitter(next, 5, 30*time.Second)
}

func newBreakerSubmitter(next core.SaleSubmitter, maxFailures uint32, openFor time.Duration) *breakerSubmitter {
	settings := gobreaker.Settings{
		Name:        "sale-backend",
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isSaleRejection(err)
		},
	}
	return &breakerSubmitter{next: next, cb: gobreaker.NewCircuitBreaker[*core.Sale](settings)}
}

func (b *breakerSubmitter) SubmitSale(ctx context.Context, req *core.SaleRequest) (*core.Sale, error) {
	sale, err := b.cb.Execute(func() (*core.Sale, error) {
		return b.next.SubmitSale(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return sale, err
}

func isSaleRejection(err error) bool {
	var stockErr *core.InsufficientStockError
	return errors.As(err, &stockErr) ||
		errors.Is(err, core.ErrEmptyCart) ||
		errors.Is(err, core.ErrInvalidPaymentMethod) ||
		errors.Is(err, core.ErrProductNotFound) ||
		errors.Is(err, context.Canceled)
}
