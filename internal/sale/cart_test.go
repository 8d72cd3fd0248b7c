package sale

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/retailkit/pos/internal/catalog"
)

func product(id int64, name, price string) catalog.Product {
	return catalog.Product{ID: id, Code: name, Name: name, Price: decimal.RequireFromString(price)}
}

func newTestCart() *Cart {
	return NewCart(1, NoTax, time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
}

// manualSubtotal recomputes the invariant the cart must uphold: the subtotal
// is always the sum of price times quantity over the remaining lines.
func manualSubtotal(lines []OrderLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func TestNewCartIsEmpty(t *testing.T) {
	c := newTestCart()
	require.True(t, c.Empty())
	require.Empty(t, c.Lines())
	require.True(t, c.Totals().Total.IsZero())
}

func TestAddSameProductIncrementsQuantity(t *testing.T) {
	c := newTestCart()
	p := product(1, "Margherita", "100.00")

	c.Add(p)
	c.Add(p)

	lines := c.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 2, lines[0].Quantity)
	require.Equal(t, "200", c.Totals().Subtotal.String())
}

func TestAddSnapshotsNameAndPrice(t *testing.T) {
	c := newTestCart()
	p := product(1, "Margherita", "100.00")
	c.Add(p)

	// a later catalog edit must not affect the open cart
	p.Name = "Renamed"
	p.Price = decimal.RequireFromString("999.00")
	c.Add(p)

	lines := c.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, "Margherita", lines[0].ProductName)
	require.Equal(t, "100", lines[0].Price.String())
	require.Equal(t, 2, lines[0].Quantity)
}

func TestDecreaseAtQuantityOneRemovesLine(t *testing.T) {
	c := newTestCart()
	c.Add(product(1, "Margherita", "100.00"))

	c.Decrease(1)

	require.True(t, c.Empty())
	require.True(t, c.Totals().Subtotal.IsZero())
}

func TestDecreaseAtOneEquivalentToRemove(t *testing.T) {
	decreased := newTestCart()
	removed := newTestCart()
	for _, c := range []*Cart{decreased, removed} {
		c.Add(product(1, "Margherita", "100.00"))
		c.Add(product(2, "Marinara", "200.00"))
	}

	decreased.Decrease(1)
	removed.Remove(1)

	require.Equal(t, removed.Lines(), decreased.Lines())
	require.Equal(t, removed.Totals(), decreased.Totals())
}

func TestRemoveDeletesLineUnconditionally(t *testing.T) {
	c := newTestCart()
	p := product(1, "Margherita", "100.00")
	c.Add(p)
	c.Add(p)
	c.Add(p)

	c.Remove(1)

	require.True(t, c.Empty())
}

func TestMutationsOnUnknownProductAreNoops(t *testing.T) {
	c := newTestCart()
	c.Add(product(1, "Margherita", "100.00"))
	before := c.Totals()

	c.Increase(99)
	c.Decrease(99)
	c.Remove(99)

	require.Len(t, c.Lines(), 1)
	require.Equal(t, before, c.Totals())
}

func TestSubtotalInvariantAcrossMutationSequence(t *testing.T) {
	c := newTestCart()
	p1 := product(1, "Margherita", "100.00")
	p2 := product(5, "Spaghetti Pasta", "150.00")
	p3 := product(6, "White Sauce Pasta", "200.00")

	steps := []func(){
		func() { c.Add(p1) },
		func() { c.Add(p2) },
		func() { c.Add(p1) },
		func() { c.Increase(5) },
		func() { c.Add(p3) },
		func() { c.Decrease(1) },
		func() { c.Decrease(1) }, // removes p1
		func() { c.Remove(6) },
		func() { c.Increase(5) },
		func() { c.Decrease(5) },
	}
	for i, step := range steps {
		step()
		lines := c.Lines()
		require.True(t, c.Totals().Subtotal.Equal(manualSubtotal(lines)), "after step %d", i)
		seen := map[int64]bool{}
		for _, l := range lines {
			require.False(t, seen[l.ProductID], "duplicate line for product %d after step %d", l.ProductID, i)
			require.GreaterOrEqual(t, l.Quantity, 1)
			seen[l.ProductID] = true
		}
	}
}

func TestLinesReturnsSnapshot(t *testing.T) {
	c := newTestCart()
	c.Add(product(1, "Margherita", "100.00"))

	lines := c.Lines()
	lines[0].Quantity = 50

	require.Equal(t, 1, c.Lines()[0].Quantity)
}

func TestFinalizeLeavesCartOpen(t *testing.T) {
	c := newTestCart()
	c.Add(product(1, "Margherita", "100.00"))

	payment := Validate(decimal.RequireFromString("100.00"), c.Totals().Total)
	o := c.Finalize(payment)

	require.Zero(t, o.ID)
	require.Equal(t, c.OperatorID, o.OperatorID)
	require.Equal(t, c.OpenedAt, o.PlacedAt)
	require.Len(t, o.Lines, 1)
	// a failed commit must be retryable without rebuilding the cart
	require.False(t, c.Empty())
}
