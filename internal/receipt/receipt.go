// Package receipt renders a finalized order as fixed-width receipt text for
// a 40-column printer.
package receipt

import (
	"fmt"
	"strings"

	"github.com/retailkit/pos/internal/sale"
)

const rule = "----------------------------------------"

var header = []string{
	"SIMPLE POS",
	"123 Main Street",
	"City, State, 12345",
	"Phone: (123) 456-7890",
}

func Render(o sale.Order) string {
	var b strings.Builder
	for _, line := range header {
		fmt.Fprintln(&b, line)
	}
	fmt.Fprintln(&b, rule)

	fmt.Fprintf(&b, "Order #: %d\n", o.ID)
	fmt.Fprintf(&b, "Date: %s\n", o.PlacedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, rule)

	fmt.Fprintln(&b, "Item                  Qty   Price    Total")
	fmt.Fprintln(&b, rule)
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "%s %4d  %6s  %8s\n",
			itemName(l.ProductName),
			l.Quantity,
			l.Price.StringFixed(2),
			l.Total().StringFixed(2))
	}
	fmt.Fprintln(&b, rule)

	amount(&b, "Subtotal:", o.Subtotal.StringFixed(2))
	for _, t := range o.Taxes {
		amount(&b, t.Name+":", t.Amount.StringFixed(2))
	}
	amount(&b, "Total:", o.Total.StringFixed(2))
	amount(&b, "Amount Paid:", o.Paid.StringFixed(2))
	amount(&b, "Change:", o.Change.StringFixed(2))

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Thank you for your purchase!")
	fmt.Fprintln(&b, "Please come again.")
	return b.String()
}

func itemName(name string) string {
	if len(name) > 18 {
		return name[:15] + "..."
	}
	return fmt.Sprintf("%-18s", name)
}

func amount(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%30s %10s\n", label, value)
}
