package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/retailkit/pos/internal/sale"
)

func TestRender(t *testing.T) {
	o := sale.Order{
		ID:         7,
		PlacedAt:   time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC),
		OperatorID: 2,
		Subtotal:   decimal.RequireFromString("450.00"),
		Taxes: []sale.TaxLine{
			{Name: "CGST (3%)", Amount: decimal.RequireFromString("13.50")},
			{Name: "IGST (4%)", Amount: decimal.RequireFromString("18.00")},
		},
		Total:  decimal.RequireFromString("481.50"),
		Paid:   decimal.RequireFromString("500.00"),
		Change: decimal.RequireFromString("18.50"),
		Lines: []sale.OrderLine{
			{ProductID: 1, ProductName: "Margherita", Price: decimal.RequireFromString("100.00"), Quantity: 1},
			{ProductID: 2, ProductName: "Marinara", Price: decimal.RequireFromString("200.00"), Quantity: 1},
			{ProductID: 3, ProductName: "Vegetarians", Price: decimal.RequireFromString("150.00"), Quantity: 1},
		},
	}

	out := Render(o)

	require.Contains(t, out, "SIMPLE POS")
	require.Contains(t, out, "Order #: 7")
	require.Contains(t, out, "Date: 2026-08-29 14:30:00")
	require.Contains(t, out, "Margherita")
	require.Contains(t, out, "450.00")
	require.Contains(t, out, "CGST (3%):")
	require.Contains(t, out, "13.50")
	require.Contains(t, out, "IGST (4%):")
	require.Contains(t, out, "18.00")
	require.Contains(t, out, "481.50")
	require.Contains(t, out, "Amount Paid:")
	require.Contains(t, out, "500.00")
	require.Contains(t, out, "Change:")
	require.Contains(t, out, "Thank you for your purchase!")
}

func TestRenderTruncatesLongProductNames(t *testing.T) {
	o := sale.Order{
		PlacedAt: time.Now(),
		Lines: []sale.OrderLine{
			{ProductName: "Extra Large Family Special Pizza", Price: decimal.RequireFromString("25.00"), Quantity: 1},
		},
		Subtotal: decimal.RequireFromString("25.00"),
		Total:    decimal.RequireFromString("25.00"),
		Paid:     decimal.RequireFromString("25.00"),
		Change:   decimal.Zero,
	}

	out := Render(o)

	require.Contains(t, out, "Extra Large Fam...")
	require.NotContains(t, out, "Extra Large Family")
}

func TestRenderItemColumns(t *testing.T) {
	o := sale.Order{
		PlacedAt: time.Now(),
		Lines: []sale.OrderLine{
			{ProductName: "Margherita", Price: decimal.RequireFromString("100.00"), Quantity: 2},
		},
		Subtotal: decimal.RequireFromString("200.00"),
		Total:    decimal.RequireFromString("200.00"),
		Paid:     decimal.RequireFromString("200.00"),
		Change:   decimal.Zero,
	}

	out := Render(o)

	var itemLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "Margherita") {
			itemLine = line
			break
		}
	}
	require.Equal(t, "Margherita            2  100.00    200.00", itemLine)
}
