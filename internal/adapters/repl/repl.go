package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pos-terminal/internal/app"
)

var errExit = errors.New("exit")

// Run starts the interactive cashier loop. Slash commands are dispatched
// deterministically; a bare number is treated as a scanned product id and
// added to the cart.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	active := svc.ActiveCurrency()
	fmt.Fprintln(out, "POS Terminal")
	fmt.Fprintf(out, "Display currency: %s (%s)\n", active.Code, active.DisplayName)
	fmt.Fprintln(out, "Scan or type a product id to add it, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	if cart := svc.GetCart(); !cart.IsEmpty {
		fmt.Fprintln(out, "Restored cart from previous session:")
		printCart(out, cart)
	}

	for {
		fmt.Fprint(out, "\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				return
			}
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := dispatch(ctx, svc, reader, out, input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
			continue
		}

		id, convErr := strconv.Atoi(input)
		if convErr != nil || id <= 0 {
			fmt.Fprintf(out, "Not a product id: %q  (type /help for all commands)\n", input)
			continue
		}
		cart, addErr := svc.AddProduct(ctx, id, 1)
		if addErr != nil {
			fmt.Fprintf(out, "Error: %v\n", addErr)
			continue
		}
		printCart(out, cart)
	}
}

func dispatch(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer, input string) error {
	tokens := strings.Fields(strings.TrimPrefix(input, "/"))
	if len(tokens) == 0 {
		return nil
	}
	cmd := strings.ToLower(tokens[0])
	args := tokens[1:]

	switch cmd {
	case "products", "p":
		result, err := svc.ListProducts(ctx)
		if err != nil {
			return err
		}
		printProducts(out, svc, result)

	case "add", "a":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /add <product-id> [quantity]")
			return nil
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty := 1
		if len(args) >= 2 {
			if qty, err = strconv.Atoi(args[1]); err != nil || qty < 1 {
				return fmt.Errorf("invalid quantity: %s", args[1])
			}
		}
		cart, err := svc.AddProduct(ctx, id, qty)
		if err != nil {
			return err
		}
		printCart(out, cart)

	case "qty", "q":
		if len(args) < 2 {
			fmt.Fprintln(out, "Usage: /qty <product-id> <quantity>   (0 removes the line)")
			return nil
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity: %s", args[1])
		}
		cart, err := svc.UpdateQuantity(id, qty)
		if err != nil {
			return err
		}
		printCart(out, cart)

	case "price":
		if len(args) < 2 {
			fmt.Fprintln(out, "Usage: /price <product-id> <amount>   (amount in the display currency)")
			return nil
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		cart, err := overridePrice(svc, id, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		printCart(out, cart)

	case "rm", "remove":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /rm <product-id>")
			return nil
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		printCart(out, svc.RemoveItem(id))

	case "cart", "c":
		printCart(out, svc.GetCart())

	case "clear":
		svc.ClearCart()
		fmt.Fprintln(out, "Cart cleared.")

	case "currencies":
		printCurrencies(out, svc.ListCurrencies())

	case "currency", "cur":
		if len(args) < 1 {
			c := svc.ActiveCurrency()
			fmt.Fprintf(out, "Display currency: %s (%s)\n", c.Code, c.DisplayName)
			return nil
		}
		if _, err := svc.SetActiveCurrency(ctx, args[0]); err != nil {
			return err
		}
		c := svc.ActiveCurrency()
		fmt.Fprintf(out, "Display currency set to %s (%s).\n", c.Code, c.DisplayName)
		printCart(out, svc.GetCart())

	case "convert":
		if len(args) < 3 {
			fmt.Fprintln(out, "Usage: /convert <amount> <from> <to>")
			return nil
		}
		amount, err := parseDecimal(args[0])
		if err != nil {
			return err
		}
		result, err := svc.Convert(app.ConvertRequest{Amount: amount, From: args[1], To: args[2]})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s = %s\n", args[0], result.From, result.Formatted)

	case "checkout", "pay":
		return handleCheckout(ctx, reader, out, svc)

	case "sale", "receipt":
		if len(args) < 1 {
			fmt.Fprintln(out, "Usage: /sale <receipt-number>")
			return nil
		}
		sale, err := svc.GetSale(ctx, args[0])
		if err != nil {
			return err
		}
		printSale(out, svc, sale)

	case "help", "h":
		printHelp(out)

	case "exit", "quit", "e":
		return errExit

	default:
		fmt.Fprintf(out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
	}
	return nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id: %s", s)
	}
	return id, nil
}
