package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxLine is one named tax amount derived from the subtotal.
type TaxLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Taxes    []TaxLine       `json:"taxes,omitempty"`
	Total    decimal.Decimal `json:"total"`
}

// OrderLine snapshots the product name and unit price at the moment the
// product was first added, so the line survives later catalog edits.
type OrderLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (l OrderLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the finalized sale. ID stays zero until Repo.Commit assigns the
// generated header id; after that the order is never mutated.
type Order struct {
	ID         int64           `json:"id"`
	PlacedAt   time.Time       `json:"placed_at"`
	OperatorID int64           `json:"operator_id"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Taxes      []TaxLine       `json:"taxes,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Paid       decimal.Decimal `json:"paid"`
	Change     decimal.Decimal `json:"change"`
	Lines      []OrderLine     `json:"lines"`
}
