package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"pos-terminal/internal/adapters/cli"
	"pos-terminal/internal/app"
	"pos-terminal/internal/core"
	"pos-terminal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newService builds a service over store, as a fresh process would.
func newService(store storage.Store) app.ApplicationService {
	ctx := context.Background()
	currency := core.NewCurrencyService(ctx, core.DefaultRegistry(), store)
	cart := core.RestoreCart(ctx, store)
	return app.NewAppService(currency, cart, app.Options{})
}

func run(t *testing.T, store storage.Store, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := cli.Run(context.Background(), newService(store), args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestRun_StatePersistsBetweenInvocations(t *testing.T) {
	store := storage.NewMemoryStore()

	_, err := run(t, store, `{"id":4,"name":"Soap","sellingPrice":2.5,"taxRate":20,"isTaxable":true,"availableStock":9}`, "add-snapshot")
	require.NoError(t, err)
	_, err = run(t, store, "", "qty", "4", "2")
	require.NoError(t, err)
	_, err = run(t, store, "", "currency", "EUR")
	require.NoError(t, err)

	out, err := run(t, store, "", "cart")
	require.NoError(t, err)
	var cart app.CartResult
	require.NoError(t, json.Unmarshal([]byte(out), &cart))
	assert.Equal(t, 2, cart.Totals.ItemCount)
	assert.Equal(t, "EUR", cart.Currency)
	assert.Equal(t, "5,52 €", cart.Display.Total)
}

func TestRun_CurrencyCommands(t *testing.T) {
	store := storage.NewMemoryStore()

	out, err := run(t, store, "", "format", "1000", "XOF")
	require.NoError(t, err)
	assert.Equal(t, "600 000 FCFA\n", out)

	out, err = run(t, store, "", "parse", "$1,234.50")
	require.NoError(t, err)
	assert.Equal(t, "1234.5\n", out)

	out, err = run(t, store, "", "convert", "600", "XOF", "NGN")
	require.NoError(t, err)
	assert.Contains(t, out, `"amount": "1550"`)

	_, err = run(t, store, "", "currency", "ZZZ")
	var unknown *core.UnknownCurrencyError
	assert.ErrorAs(t, err, &unknown)
}

func TestRun_Errors(t *testing.T) {
	store := storage.NewMemoryStore()

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"no command", nil, cli.ErrUsage},
		{"unknown command", []string{"refund"}, cli.ErrUsage},
		{"missing args", []string{"qty", "1"}, cli.ErrUsage},
		{"no catalog", []string{"add", "1"}, app.ErrCatalogUnavailable},
		{"zero quantity", []string{"add", "1", "0"}, app.ErrInvalidQuantity},
		{"empty cart checkout", []string{"checkout", "cash"}, core.ErrEmptyCart},
		{"missing line", []string{"price", "9", "1.00"}, core.ErrItemNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, store, "", tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
