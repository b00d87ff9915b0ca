package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/fashion_shop/internal/cart"
	"github.com/Skotchmaster/fashion_shop/internal/domain"
	"github.com/Skotchmaster/fashion_shop/internal/events"
	"github.com/Skotchmaster/fashion_shop/internal/logging"
	"github.com/Skotchmaster/fashion_shop/internal/models"
	"github.com/Skotchmaster/fashion_shop/internal/notify"
	"github.com/Skotchmaster/fashion_shop/internal/pricing"
	"github.com/Skotchmaster/fashion_shop/internal/repo"
	"github.com/Skotchmaster/fashion_shop/internal/transport"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Rates  pricing.Rates
	Mailer notify.Mailer
	Events events.Publisher
	// Index, when set, is refreshed with the new stock of ordered or
	// restocked products.
	Index ProductIndex
}

// PlaceOrder prices the requested items, or the user's saved cart when the
// request has none, against the current catalog. Stock is decremented and
// the saved cart cleared in the same transaction as the insert.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place", "user_id", userID)

	var (
		c           *cart.Cart
		clearCartOf *uuid.UUID
	)
	if len(req.OrderItems) > 0 {
		c = cart.New()
		for _, it := range req.OrderItems {
			if it.Quantity < 1 {
				return nil, fmt.Errorf("%w: quantity must be >= 1", domain.ErrValidation)
			}
			c.Add(it.ProductID, it.Size, it.Quantity)
		}
	} else {
		items, err := s.Repo.GetCartItems(ctx, userID)
		if err != nil {
			return nil, err
		}
		c = cartFromItems(items)
		clearCartOf = &userID
	}
	if c.Len() == 0 {
		return nil, domain.ErrEmptyCart
	}

	lines, err := s.priceLines(ctx, c)
	if err != nil {
		return nil, err
	}
	draft, err := pricing.Assemble(lines, req.ShippingAddress.Domain(), req.PaymentMethod, s.Rates)
	if err != nil {
		return nil, err
	}
	if diff := draft.Diverges(pricing.Claimed{
		ItemsPrice:    req.ItemsPrice,
		ShippingPrice: req.ShippingPrice,
		TaxPrice:      req.TaxPrice,
		TotalPrice:    req.TotalPrice,
	}); len(diff) > 0 {
		l.Warn("client_totals_mismatch", "fields", diff, "total", draft.TotalPrice)
	}

	o := orderFromDraft(userID, draft)
	if err := s.Repo.PlaceOrder(ctx, o, clearCartOf); err != nil {
		return nil, err
	}
	reindexStock(ctx, s.Index, s.Repo, o.OrderItems)

	publish(ctx, s.Events, events.TopicOrders, o.ID.String(), map[string]any{
		"type":     "order_created",
		"order_id": o.ID,
		"user_id":  userID,
		"items":    len(o.OrderItems),
		"total":    o.TotalPrice,
		"at":       o.CreatedAt,
	})
	if u, err := s.Repo.GetUserByID(ctx, userID); err == nil {
		sendMail(ctx, s.Mailer, func() (notify.Message, error) {
			return notify.OrderConfirmation(u.Email, o)
		})
	} else {
		l.Warn("order_confirmation_skipped", "reason", "cannot load user", "error", err)
	}
	return o, nil
}

func (s *OrderService) priceLines(ctx context.Context, c *cart.Cart) ([]pricing.Line, error) {
	cl := c.Lines()
	ids := make([]uuid.UUID, 0, len(cl))
	for _, line := range cl {
		ids = append(ids, line.ProductID)
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]pricing.Line, 0, len(cl))
	for _, line := range cl {
		p, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, line.ProductID)
		}
		if !domain.HasSize(p.SizeOptions, line.Size) {
			return nil, fmt.Errorf("%w: size %s is not offered for %s", domain.ErrValidation, line.Size, p.Name)
		}
		out = append(out, pricing.Line{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.PrimaryImage(),
			Size:      line.Size,
			Quantity:  line.Quantity,
			Price:     p.Price,
		})
	}
	return out, nil
}

func orderFromDraft(userID uuid.UUID, d *pricing.Draft) *models.Order {
	items := make([]models.OrderItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Image:     it.Image,
			Price:     it.Price,
		}
	}
	return &models.Order{
		UserID:          userID,
		OrderItems:      items,
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   d.PaymentMethod,
		ItemsPrice:      d.ItemsPrice,
		ShippingPrice:   d.ShippingPrice,
		TaxPrice:        d.TaxPrice,
		TotalPrice:      d.TotalPrice,
		Status:          domain.StatusPending,
	}
}

// GetOrder returns the order to its owner or to an admin.
func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !actor.Owns(o.UserID) {
		return nil, fmt.Errorf("%w: order belongs to another user", domain.ErrForbidden)
	}
	return o, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID, offset, limit)
}

func (s *OrderService) ListOrders(ctx context.Context, status string, offset, limit int) (int64, []models.Order, error) {
	st := domain.OrderStatus(status)
	if st != "" && !st.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.Repo.ListOrders(ctx, st, offset, limit)
}

// UpdateStatus moves an order forward. Cancelling returns the items to
// stock; reaching Delivered records the delivery time.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateOrderStatusRequest) (*models.Order, error) {
	var (
		from      domain.OrderStatus
		restocked bool
	)
	o, err := s.Repo.MutateOrder(ctx, id, func(o *models.Order) (bool, error) {
		if err := domain.CheckTransition(o.Status, req.Status, req.TrackingNumber); err != nil {
			return false, err
		}
		from = o.Status
		restock := req.Status == domain.StatusCancelled && o.Status != domain.StatusCancelled

		o.Status = req.Status
		if req.TrackingNumber != "" {
			o.TrackingNumber = req.TrackingNumber
		}
		if req.Status == domain.StatusDelivered && !o.IsDelivered {
			now := time.Now().UTC()
			o.IsDelivered = true
			o.DeliveredAt = &now
		}
		restocked = restock
		return restock, nil
	})
	if err != nil {
		return nil, err
	}
	if restocked {
		reindexStock(ctx, s.Index, s.Repo, o.OrderItems)
	}

	publish(ctx, s.Events, events.TopicOrders, o.ID.String(), map[string]any{
		"type":            "order_status_changed",
		"order_id":        o.ID,
		"from":            from,
		"to":              o.Status,
		"tracking_number": o.TrackingNumber,
		"at":              time.Now().UTC(),
	})
	return o, nil
}

// MarkPaid records the payment provider's result. Payment does not move the
// order status.
func (s *OrderService) MarkPaid(ctx context.Context, actor Actor, id uuid.UUID, req transport.PayOrderRequest) (*models.Order, error) {
	o, err := s.Repo.MutateOrder(ctx, id, func(o *models.Order) (bool, error) {
		if !actor.IsAdmin && !actor.Owns(o.UserID) {
			return false, fmt.Errorf("%w: order belongs to another user", domain.ErrForbidden)
		}
		if o.Status == domain.StatusCancelled {
			return false, fmt.Errorf("%w: order is cancelled", domain.ErrInvalidTransition)
		}
		if o.IsPaid {
			return false, fmt.Errorf("%w: order is already paid", domain.ErrConflict)
		}
		now := time.Now().UTC()
		o.IsPaid = true
		o.PaidAt = &now
		o.PaymentResult = models.PaymentResult{
			ID:           req.ID,
			Status:       req.Status,
			UpdateTime:   req.UpdateTime,
			EmailAddress: req.EmailAddress,
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, o.ID.String(), map[string]any{
		"type":     "order_paid",
		"order_id": o.ID,
		"total":    o.TotalPrice,
		"at":       o.PaidAt,
	})
	return o, nil
}
