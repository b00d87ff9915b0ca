// Package cart holds the cart reducer. It has no storage of its own: callers
// load lines, apply operations, and persist the result.
package cart

import (
	"fmt"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Line struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Size      domain.Size
	Quantity  int
}

type Cart struct {
	lines []Line
}

func New(lines ...Line) *Cart {
	c := &Cart{lines: make([]Line, 0, len(lines))}
	c.lines = append(c.lines, lines...)
	return c
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Line(lineID uuid.UUID) (Line, bool) {
	if i := c.indexOf(lineID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// QuantityOf returns the quantity already held for (productID, size).
func (c *Cart) QuantityOf(productID uuid.UUID, size domain.Size) int {
	for _, l := range c.lines {
		if l.ProductID == productID && l.Size == size {
			return l.Quantity
		}
	}
	return 0
}

// Add merges qty into the line for (productID, size) or appends a new one.
// A non-positive qty counts as 1.
func (c *Cart) Add(productID uuid.UUID, size domain.Size, qty int) Line {
	if qty < 1 {
		qty = 1
	}
	for i := range c.lines {
		if c.lines[i].ProductID == productID && c.lines[i].Size == size {
			c.lines[i].Quantity += qty
			return c.lines[i]
		}
	}
	l := Line{ID: uuid.New(), ProductID: productID, Size: size, Quantity: qty}
	c.lines = append(c.lines, l)
	return l
}

// SetQuantity clamps qty to at least 1; dropping a line goes through Remove.
func (c *Cart) SetQuantity(lineID uuid.UUID, qty int) (Line, error) {
	i := c.indexOf(lineID)
	if i < 0 {
		return Line{}, fmt.Errorf("%w: cart line %s", domain.ErrNotFound, lineID)
	}
	if qty < 1 {
		qty = 1
	}
	c.lines[i].Quantity = qty
	return c.lines[i], nil
}

func (c *Cart) Remove(lineID uuid.UUID) error {
	i := c.indexOf(lineID)
	if i < 0 {
		return fmt.Errorf("%w: cart line %s", domain.ErrNotFound, lineID)
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return nil
}

func (c *Cart) Clear() { c.lines = c.lines[:0] }

func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// PriceFunc resolves the current price of a product; ok is false when the
// product no longer exists.
type PriceFunc func(productID uuid.UUID) (price decimal.Decimal, ok bool)

// Subtotal prices every line at the product's current price, so it moves when
// an admin edits a price while the item sits in the cart. Lines whose product
// is gone contribute nothing.
func (c *Cart) Subtotal(priceOf PriceFunc) decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		p, ok := priceOf(l.ProductID)
		if !ok {
			continue
		}
		total = total.Add(p.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func (c *Cart) indexOf(lineID uuid.UUID) int {
	for i, l := range c.lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}
