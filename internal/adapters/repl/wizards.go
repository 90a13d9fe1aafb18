package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"pos-terminal/internal/app"
	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

// handleCheckout walks the cashier through payment details and submits the
// cart. Declining at the confirmation prompt leaves the cart untouched.
func handleCheckout(ctx context.Context, reader *bufio.Reader, out io.Writer, svc app.ApplicationService) error {
	cart := svc.GetCart()
	if cart.IsEmpty {
		return core.ErrEmptyCart
	}
	printCart(out, cart)

	methods := make([]string, len(core.PaymentMethods))
	for i, m := range core.PaymentMethods {
		methods[i] = string(m)
	}
	method := prompt(reader, out, fmt.Sprintf("Payment method (%s) [cash]: ", strings.Join(methods, ", ")))
	if method == "" {
		method = string(core.PaymentCash)
	}

	discount := decimal.Zero
	if raw := prompt(reader, out, "Discount % [0]: "); raw != "" {
		d, err := parseDecimal(strings.TrimSuffix(raw, "%"))
		if err != nil {
			return err
		}
		discount = d
	}

	req := app.CheckoutRequest{
		PaymentMethod:   method,
		DiscountPercent: discount,
		CustomerName:    prompt(reader, out, "Customer name (optional): "),
		CustomerPhone:   prompt(reader, out, "Customer phone (optional): "),
		CustomerEmail:   prompt(reader, out, "Customer email (optional): "),
		Notes:           prompt(reader, out, "Notes (optional): "),
	}

	choice := strings.ToLower(prompt(reader, out, "Complete sale? (y/n): "))
	if choice != "y" && choice != "yes" {
		fmt.Fprintln(out, "Checkout cancelled. Cart kept.")
		return nil
	}

	result, err := svc.Checkout(ctx, req)
	if err != nil {
		var stockErr *core.InsufficientStockError
		if errors.As(err, &stockErr) {
			fmt.Fprintln(out, "Stock changed since these items were added:")
			for _, s := range stockErr.Shortages {
				fmt.Fprintf(out, "  product %d: requested %d, available %d\n", s.ProductID, s.Requested, s.Available)
			}
			fmt.Fprintln(out, "Adjust the quantities with /qty and try again.")
		}
		return err
	}

	fmt.Fprintf(out, "\nSale COMPLETED. Receipt: %s\n", result.Sale.ReceiptNumber)
	printSaleRequest(out, svc, result.Request)
	return nil
}

// overridePrice reads a price typed in the display currency, converts it to
// the base currency and applies it to the cart line.
func overridePrice(svc app.ApplicationService, productID int, text string) (*app.CartResult, error) {
	if !strings.ContainsFunc(text, unicode.IsDigit) {
		return nil, fmt.Errorf("invalid amount: %s", text)
	}
	amount := svc.ParseAmount(text)
	currencies := svc.ListCurrencies()
	converted, err := svc.Convert(app.ConvertRequest{Amount: amount, From: currencies.Active, To: currencies.Base})
	if err != nil {
		return nil, err
	}
	return svc.UpdatePrice(productID, converted.Amount)
}

func prompt(reader *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprint(out, label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount: %s", s)
	}
	return d, nil
}
