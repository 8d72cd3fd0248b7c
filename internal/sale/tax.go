package sale

import "github.com/shopspring/decimal"

// TaxPolicy derives the tax breakdown from a subtotal. The total is always
// subtotal plus the sum of the returned lines.
type TaxPolicy func(subtotal decimal.Decimal) []TaxLine

// NoTax makes the total equal the subtotal.
func NoTax(decimal.Decimal) []TaxLine { return nil }

type TaxRate struct {
	Name string
	Rate decimal.Decimal
}

// FlatRates applies each rate to the subtotal, rounding every component to
// two decimal places.
func FlatRates(rates ...TaxRate) TaxPolicy {
	return func(subtotal decimal.Decimal) []TaxLine {
		lines := make([]TaxLine, 0, len(rates))
		for _, r := range rates {
			lines = append(lines, TaxLine{
				Name:   r.Name,
				Amount: subtotal.Mul(r.Rate).Round(2),
			})
		}
		return lines
	}
}

func computeTotals(lines []OrderLine, policy TaxPolicy) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	taxes := policy(subtotal)
	total := subtotal
	for _, t := range taxes {
		total = total.Add(t.Amount)
	}
	return Totals{Subtotal: subtotal, Taxes: taxes, Total: total}
}
