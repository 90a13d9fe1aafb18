package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pos-terminal/internal/app"
	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

// ErrUsage is returned for unknown commands and missing arguments.
var ErrUsage = errors.New("usage")

// Run executes a one-shot CLI command and writes its JSON result to out.
// args is os.Args[1:]; the first element is the subcommand name. Cart
// commands act on the persisted cart, so successive invocations build up
// one sale.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return usage("")
	}
	rest := args[1:]

	switch args[0] {
	case "currencies":
		return emit(out, svc.ListCurrencies())

	case "currency":
		if len(rest) == 0 {
			return emit(out, svc.ActiveCurrency())
		}
		result, err := svc.SetActiveCurrency(ctx, rest[0])
		if err != nil {
			return err
		}
		return emit(out, result)

	case "convert":
		if len(rest) < 3 {
			return usage("convert <amount> <from> <to>")
		}
		amount, err := decimal.NewFromString(rest[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", rest[0], err)
		}
		result, err := svc.Convert(app.ConvertRequest{Amount: amount, From: rest[1], To: rest[2]})
		if err != nil {
			return err
		}
		return emit(out, result)

	case "format":
		if len(rest) < 1 {
			return usage("format <amount-in-base> [currency]")
		}
		amount, err := decimal.NewFromString(rest[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", rest[0], err)
		}
		req := app.FormatRequest{AmountInBase: amount}
		if len(rest) >= 2 {
			req.Currency = rest[1]
		}
		s, err := svc.FormatAmount(req)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, s)
		return err

	case "parse":
		if len(rest) < 1 {
			return usage("parse <text>")
		}
		_, err := fmt.Fprintln(out, svc.ParseAmount(strings.Join(rest, " ")).String())
		return err

	case "products":
		result, err := svc.ListProducts(ctx)
		if err != nil {
			return err
		}
		return emit(out, result)

	case "cart":
		return emit(out, svc.GetCart())

	case "add":
		if len(rest) < 1 {
			return usage("add <product-id> [quantity]")
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", rest[0])
		}
		qty := 1
		if len(rest) >= 2 {
			if qty, err = strconv.Atoi(rest[1]); err != nil {
				return fmt.Errorf("invalid quantity %q", rest[1])
			}
		}
		result, err := svc.AddProduct(ctx, id, qty)
		if err != nil {
			return err
		}
		return emit(out, result)

	case "add-snapshot":
		// Reads one product snapshot as JSON from stdin.
		var snapshot core.ProductInput
		if err := json.NewDecoder(in).Decode(&snapshot); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		result, err := svc.AddSnapshot(snapshot, 1)
		if err != nil {
			return err
		}
		return emit(out, result)

	case "qty":
		if len(rest) < 2 {
			return usage("qty <product-id> <quantity>")
		}
		id, err1 := strconv.Atoi(rest[0])
		qty, err2 := strconv.Atoi(rest[1])
		if err1 != nil || err2 != nil {
			return usage("qty <product-id> <quantity>")
		}
		result, err := svc.UpdateQuantity(id, qty)
		if err != nil {
			return err
		}
		return emit(out, result)

	case "price":
		if len(rest) < 2 {
			return usage("price <product-id> <price-in-base>")
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", rest[0])
		}
		price, err := decimal.NewFromString(rest[1])
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", rest[1], err)
		}
		result, err := svc.UpdatePrice(id, price)
		if err != nil {
			return err
		}
		return emit(out, result)

	case "rm":
		if len(rest) < 1 {
			return usage("rm <product-id>")
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", rest[0])
		}
		return emit(out, svc.RemoveItem(id))

	case "clear":
		return emit(out, svc.ClearCart())

	case "checkout":
		if len(rest) < 1 {
			return usage("checkout <payment-method> [discount-percent] [idempotency-key]")
		}
		req := app.CheckoutRequest{PaymentMethod: rest[0]}
		if len(rest) >= 2 {
			d, err := decimal.NewFromString(rest[1])
			if err != nil {
				return fmt.Errorf("invalid discount %q: %w", rest[1], err)
			}
			req.DiscountPercent = d
		}
		if len(rest) >= 3 {
			req.IdempotencyKey = rest[2]
		}
		result, err := svc.Checkout(ctx, req)
		if err != nil {
			return err
		}
		return emit(out, result)

	case "sale":
		if len(rest) < 1 {
			return usage("sale <receipt-number>")
		}
		sale, err := svc.GetSale(ctx, rest[0])
		if err != nil {
			return err
		}
		return emit(out, sale)

	default:
		return fmt.Errorf("%w: unknown command %s\nAvailable: currencies, currency, convert, format, parse, products, cart, add, add-snapshot, qty, price, rm, clear, checkout, sale, token", ErrUsage, args[0])
	}
}

func usage(form string) error {
	if form == "" {
		return fmt.Errorf("%w: app <command> [args]", ErrUsage)
	}
	return fmt.Errorf("%w: app %s", ErrUsage, form)
}

func emit(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
