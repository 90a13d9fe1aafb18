package repl

import (
	"fmt"
	"io"
	"strings"

	"pos-terminal/internal/app"
	"pos-terminal/internal/core"

	"github.com/shopspring/decimal"
)

func printCart(out io.Writer, cart *app.CartResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  CART (%s)\n", cart.Currency)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	if cart.IsEmpty {
		fmt.Fprintln(out, "  Cart is empty.")
		fmt.Fprintln(out, strings.Repeat("=", 62))
		return
	}
	fmt.Fprintf(out, "  %-6s %-28s %5s %18s\n", "ID", "NAME", "QTY", "LINE TOTAL (BASE)")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, it := range cart.Items {
		fmt.Fprintf(out, "  %-6d %-28s %5d %18s\n",
			it.Product.ID, truncate(productLabel(it.Product), 28), it.Quantity, it.LineTotal.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("-", 62))
	fmt.Fprintf(out, "  %-40s %19s\n", fmt.Sprintf("Items: %d   Subtotal", cart.Totals.ItemCount), cart.Display.Subtotal)
	fmt.Fprintf(out, "  %-40s %19s\n", "Tax", cart.Display.TaxAmount)
	fmt.Fprintf(out, "  %-40s %19s\n", "TOTAL", cart.Display.Total)
	fmt.Fprintln(out, strings.Repeat("=", 62))
}

func printProducts(out io.Writer, svc app.ApplicationService, result *app.ProductListResult) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 72))
	fmt.Fprintln(out, "  PRODUCTS")
	fmt.Fprintln(out, strings.Repeat("=", 72))
	if len(result.Products) == 0 {
		fmt.Fprintln(out, "  No products found.")
		fmt.Fprintln(out, strings.Repeat("=", 72))
		return
	}
	fmt.Fprintf(out, "  %-6s %-12s %-24s %16s %8s\n", "ID", "SKU", "NAME", "PRICE", "STOCK")
	fmt.Fprintln(out, strings.Repeat("-", 72))
	for _, p := range result.Products {
		price, _ := svc.FormatAmount(app.FormatRequest{AmountInBase: p.SellingPrice})
		fmt.Fprintf(out, "  %-6d %-12s %-24s %16s %8d\n",
			p.ID, truncate(p.SKU, 12), truncate(p.Name, 24), price, p.AvailableStock)
	}
	fmt.Fprintln(out, strings.Repeat("=", 72))
}

func printCurrencies(out io.Writer, result *app.CurrencyListResult) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %-5s %-6s %-28s %14s\n", "CODE", "SYMBOL", "NAME", "RATE")
	fmt.Fprintln(out, strings.Repeat("-", 58))
	for _, c := range result.Currencies {
		marker := " "
		if c.Code == result.Active {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-5s %-6s %-28s %14s\n", marker, c.Code, c.Symbol, c.DisplayName, c.Rate.String())
	}
	fmt.Fprintf(out, "\n  Base: %s   (* = display currency)\n", result.Base)
}

func printSale(out io.Writer, svc app.ApplicationService, sale *core.Sale) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "RECEIPT:  %s\n", sale.ReceiptNumber)
	fmt.Fprintf(out, "DATE:     %s\n", sale.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "PAYMENT:  %s\n", sale.PaymentMethod)
	if sale.CustomerName != "" {
		fmt.Fprintf(out, "CUSTOMER: %s\n", sale.CustomerName)
	}
	for _, l := range sale.Lines {
		name := l.ProductName
		if name == "" {
			name = fmt.Sprintf("#%d", l.ProductID)
		}
		fmt.Fprintf(out, "  %3d x %-30s %s\n", l.Quantity, truncate(name, 30), display(svc, l.LineTotal))
	}
	fmt.Fprintf(out, "SUBTOTAL: %s\n", display(svc, sale.Subtotal))
	if sale.DiscountAmount.IsPositive() {
		fmt.Fprintf(out, "DISCOUNT: -%s\n", display(svc, sale.DiscountAmount))
	}
	fmt.Fprintf(out, "TAX:      %s\n", display(svc, sale.TaxAmount))
	fmt.Fprintf(out, "TOTAL:    %s\n", display(svc, sale.TotalAmount))
}

func printSaleRequest(out io.Writer, svc app.ApplicationService, req *core.SaleRequest) {
	fmt.Fprintf(out, "SUBTOTAL: %s\n", display(svc, decimal.NewFromFloat(req.Subtotal)))
	if req.DiscountAmount > 0 {
		fmt.Fprintf(out, "DISCOUNT: -%s\n", display(svc, decimal.NewFromFloat(req.DiscountAmount)))
	}
	fmt.Fprintf(out, "TAX:      %s\n", display(svc, decimal.NewFromFloat(req.TaxAmount)))
	fmt.Fprintf(out, "TOTAL:    %s\n", display(svc, decimal.NewFromFloat(req.TotalAmount)))
}

func display(svc app.ApplicationService, amountInBase decimal.Decimal) string {
	s, _ := svc.FormatAmount(app.FormatRequest{AmountInBase: amountInBase})
	return s
}

func productLabel(p core.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("#%d", p.ID)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `
Cart
  <id>                      Add one unit of a product (scan)
  /add <id> [qty]           Add units of a product
  /qty <id> <qty>           Set a line's quantity (0 removes it)
  /price <id> <amount>      Override a line's unit price (display currency)
  /rm <id>                  Remove a line
  /cart                     Show the cart
  /clear                    Empty the cart

Catalog and sales
  /products                 List products with live stock
  /checkout                 Take payment and submit the sale
  /sale <receipt>           Show a completed sale

Currency
  /currencies               List currencies and rates
  /currency [code]          Show or switch the display currency
  /convert <amt> <from> <to>

  /help                     This help
  /exit                     Quit (the cart is kept for next time)`)
}
