// Package pricing turns priced cart lines into an order draft.
package pricing

import (
	"fmt"
	"strings"

	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is a cart line already resolved against the catalog. Its fields are
// copied into the order as-is.
type Line struct {
	ProductID uuid.UUID
	Name      string
	Image     string
	Size      domain.Size
	Quantity  int
	Price     decimal.Decimal
}

func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Rates struct {
	Shipping decimal.Decimal
	TaxRate  decimal.Decimal
}

func DefaultRates() Rates {
	return Rates{
		Shipping: decimal.NewFromInt(25),
		TaxRate:  decimal.RequireFromString("0.10"),
	}
}

type Draft struct {
	Items           []Line
	ShippingAddress domain.Address
	PaymentMethod   string
	ItemsPrice      decimal.Decimal
	ShippingPrice   decimal.Decimal
	TaxPrice        decimal.Decimal
	TotalPrice      decimal.Decimal
}

// Assemble prices lines with a flat shipping fee and a flat tax rate. Tax is
// rounded to cents; total is the exact sum of the other three.
func Assemble(lines []Line, addr domain.Address, paymentMethod string, r Rates) (*Draft, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return nil, fmt.Errorf("%w: paymentMethod is required", domain.ErrValidation)
	}

	items := make([]Line, len(lines))
	itemsPrice := decimal.Zero
	for i, l := range lines {
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be > 0", domain.ErrValidation)
		}
		if l.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price must be >= 0", domain.ErrValidation)
		}
		items[i] = l
		itemsPrice = itemsPrice.Add(l.Total())
	}

	tax := itemsPrice.Mul(r.TaxRate).Round(2)
	return &Draft{
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   paymentMethod,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   r.Shipping,
		TaxPrice:        tax,
		TotalPrice:      itemsPrice.Add(r.Shipping).Add(tax),
	}, nil
}

// Claimed holds totals a client computed on its own. They are never trusted.
type Claimed struct {
	ItemsPrice    *decimal.Decimal
	ShippingPrice *decimal.Decimal
	TaxPrice      *decimal.Decimal
	TotalPrice    *decimal.Decimal
}

// Diverges lists the claimed totals that differ from the draft.
func (d *Draft) Diverges(c Claimed) []string {
	var out []string
	check := func(name string, claimed *decimal.Decimal, actual decimal.Decimal) {
		if claimed != nil && !claimed.Equal(actual) {
			out = append(out, name)
		}
	}
	check("itemsPrice", c.ItemsPrice, d.ItemsPrice)
	check("shippingPrice", c.ShippingPrice, d.ShippingPrice)
	check("taxPrice", c.TaxPrice, d.TaxPrice)
	check("totalPrice", c.TotalPrice, d.TotalPrice)
	return out
}
