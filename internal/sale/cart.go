package sale

import (
	"time"

	"github.com/retailkit/pos/internal/catalog"
)

// Cart is the in-progress sale: an ordered set of lines with at most one
// line per product. Mutations never fail; references to unknown lines are
// no-ops. Callers are expected to serialize access (one cart belongs to one
// operator session).
type Cart struct {
	OperatorID int64
	OpenedAt   time.Time

	policy TaxPolicy
	lines  []OrderLine
	totals Totals
	dirty  bool
}

func NewCart(operatorID int64, policy TaxPolicy, now time.Time) *Cart {
	return &Cart{
		OperatorID: operatorID,
		OpenedAt:   now,
		policy:     policy,
		dirty:      true,
	}
}

// Add puts the product in the cart. A repeat of a product already present
// increments its quantity instead of appending a second line; the first add
// snapshots the product's current name and price.
func (c *Cart) Add(p catalog.Product) {
	defer c.invalidate()
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, OrderLine{
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Quantity:    1,
	})
}

func (c *Cart) Increase(productID int64) {
	defer c.invalidate()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity++
			return
		}
	}
}

// Decrease lowers the quantity by one; a line at quantity 1 is removed
// rather than kept at zero.
func (c *Cart) Decrease(productID int64) {
	defer c.invalidate()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			if c.lines[i].Quantity > 1 {
				c.lines[i].Quantity--
			} else {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			return
		}
	}
}

func (c *Cart) Remove(productID int64) {
	defer c.invalidate()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Lines returns a copy; callers cannot mutate the cart through it.
func (c *Cart) Lines() []OrderLine {
	out := make([]OrderLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Totals recomputes lazily: every mutation marks the cached totals stale.
func (c *Cart) Totals() Totals {
	if c.dirty {
		c.totals = computeTotals(c.lines, c.policy)
		c.dirty = false
	}
	return c.totals
}

func (c *Cart) invalidate() { c.dirty = true }

// Finalize builds the order to persist. The cart itself is untouched, so a
// failed commit leaves the sale open for retry.
func (c *Cart) Finalize(p Payment) Order {
	t := c.Totals()
	return Order{
		PlacedAt:   c.OpenedAt,
		OperatorID: c.OperatorID,
		Subtotal:   t.Subtotal,
		Taxes:      t.Taxes,
		Total:      t.Total,
		Paid:       p.Tendered,
		Change:     p.Change,
		Lines:      c.Lines(),
	}
}
