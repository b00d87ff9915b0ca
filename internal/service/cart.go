package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/fashion_shop/internal/cart"
	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/events"
	"github.com/Skotchmaster/fashion_shop/internal/models"
	"github.com/Skotchmaster/fashion_shop/internal/repo"
	"github.com/Skotchmaster/fashion_shop/internal/stock"
	"github.com/Skotchmaster/fashion_shop/internal/transport"
)

// CartService keeps one cart per user on the server. Every mutation loads
// the cart, runs the reducer and writes the whole cart back.
type CartService struct {
	Repo   *repo.GormRepo
	Stock  *stock.Gatekeeper
	Events events.Publisher
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*transport.CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

// AddToCart merges the quantity into an existing (product, size) line. The
// stock check covers what is already in the cart plus what is added.
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, req transport.AddToCartRequest) (*transport.CartView, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", domain.ErrValidation)
	}
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	p, err := s.Repo.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !domain.HasSize(p.SizeOptions, req.Size) {
		return nil, fmt.Errorf("%w: size %s is not offered for %s", domain.ErrValidation, req.Size, p.Name)
	}

	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Stock.CanReserve(ctx, p.ID, c.QuantityOf(p.ID, req.Size)+qty); err != nil {
		return nil, err
	}
	line := c.Add(p.ID, req.Size, qty)

	if err := s.save(ctx, userID, c); err != nil {
		return nil, err
	}
	s.notify(ctx, userID, "cart_item_added", line)
	return s.view(ctx, c)
}

func (s *CartService) UpdateCartItem(ctx context.Context, userID, lineID uuid.UUID, qty int) (*transport.CartView, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", domain.ErrValidation)
	}
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	line, ok := c.Line(lineID)
	if !ok {
		return nil, fmt.Errorf("%w: cart line %s", domain.ErrNotFound, lineID)
	}
	if err := s.Stock.CanReserve(ctx, line.ProductID, qty); err != nil {
		return nil, err
	}
	if line, err = c.SetQuantity(lineID, qty); err != nil {
		return nil, err
	}

	if err := s.save(ctx, userID, c); err != nil {
		return nil, err
	}
	s.notify(ctx, userID, "cart_item_updated", line)
	return s.view(ctx, c)
}

func (s *CartService) RemoveCartItem(ctx context.Context, userID, lineID uuid.UUID) (*transport.CartView, error) {
	c, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	line, _ := c.Line(lineID)
	if err := c.Remove(lineID); err != nil {
		return nil, err
	}

	if err := s.save(ctx, userID, c); err != nil {
		return nil, err
	}
	s.notify(ctx, userID, "cart_item_removed", line)
	return s.view(ctx, c)
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return err
	}
	publish(ctx, s.Events, events.TopicCarts, userID.String(), map[string]any{
		"type":    "cart_cleared",
		"user_id": userID,
		"at":      time.Now().UTC(),
	})
	return nil
}

func (s *CartService) load(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	items, err := s.Repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cartFromItems(items), nil
}

func (s *CartService) save(ctx context.Context, userID uuid.UUID, c *cart.Cart) error {
	lines := c.Lines()
	items := make([]models.CartItem, len(lines))
	for i, l := range lines {
		items[i] = models.CartItem{ID: l.ID, ProductID: l.ProductID, Size: l.Size, Quantity: l.Quantity}
	}
	return s.Repo.ReplaceCart(ctx, userID, items)
}

// view prices the cart at current catalog prices. Lines whose product is
// gone stay visible but unavailable and add nothing to the subtotal.
func (s *CartService) view(ctx context.Context, c *cart.Cart) (*transport.CartView, error) {
	lines := c.Lines()
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := &transport.CartView{Items: make([]transport.CartLineView, 0, len(lines)), ItemCount: c.ItemCount()}
	for _, l := range lines {
		v := transport.CartLineView{ID: l.ID, ProductID: l.ProductID, Size: l.Size, Quantity: l.Quantity}
		if p, ok := products[l.ProductID]; ok {
			price := p.Price
			v.Name, v.Slug, v.Image, v.Price, v.Stock = p.Name, p.Slug, p.PrimaryImage(), &price, p.Stock
			v.Available = p.Stock >= l.Quantity
		}
		out.Items = append(out.Items, v)
	}
	out.Subtotal = c.Subtotal(func(id uuid.UUID) (decimal.Decimal, bool) {
		p, ok := products[id]
		return p.Price, ok
	})
	return out, nil
}

func (s *CartService) notify(ctx context.Context, userID uuid.UUID, kind string, l cart.Line) {
	publish(ctx, s.Events, events.TopicCarts, userID.String(), map[string]any{
		"type":       kind,
		"user_id":    userID,
		"line_id":    l.ID,
		"product_id": l.ProductID,
		"size":       l.Size,
		"quantity":   l.Quantity,
		"at":         time.Now().UTC(),
	})
}

func cartFromItems(items []models.CartItem) *cart.Cart {
	lines := make([]cart.Line, len(items))
	for i, it := range items {
		lines[i] = cart.Line{ID: it.ID, ProductID: it.ProductID, Size: it.Size, Quantity: it.Quantity}
	}
	return cart.New(lines...)
}
