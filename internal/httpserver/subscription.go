package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_shop/internal/logging"
	"github.com/Skotchmaster/fashion_shop/internal/service"
	"github.com/Skotchmaster/fashion_shop/internal/transport"
	"github.com/Skotchmaster/fashion_shop/internal/util"
)

type SubscriptionHTTP struct {
	Svc     *service.SubscriptionService
	Contact *service.ContactService
}

func (h *SubscriptionHTTP) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subscription.subscribe")

	var req transport.SubscribeRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "subscribe_error", err)
	}

	sub, reactivated, err := h.Svc.Subscribe(ctx, req)
	if err != nil {
		return fail(l, "subscribe_error", err)
	}

	msg, code := "Successfully subscribed to newsletter", http.StatusCreated
	if reactivated {
		msg, code = "Subscription reactivated", http.StatusOK
	}
	l.Info("subscribe_success", "source", sub.Source, "reactivated", reactivated)
	return c.JSON(code, echo.Map{"message": msg, "subscription": sub})
}

func (h *SubscriptionHTTP) Unsubscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subscription.unsubscribe")

	var req transport.UnsubscribeRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "unsubscribe_error", err)
	}
	if err := h.Svc.Unsubscribe(ctx, req.Email); err != nil {
		return fail(l, "unsubscribe_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully unsubscribed"})
}

func (h *SubscriptionHTTP) ListSubscriptions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "subscription.list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, subs, err := h.Svc.ListActive(ctx, offset, limit)
	if err != nil {
		return fail(l, "list_subscriptions_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": subs,
		"meta": util.NewMeta(page, offset, limit, total),
	})
}

func (h *SubscriptionHTTP) SubmitContact(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.submit")

	var req transport.ContactRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "contact_error", err)
	}
	m, err := h.Contact.Submit(ctx, req)
	if err != nil {
		return fail(l, "contact_error", err)
	}

	l.Info("contact_success", "message_id", m.ID)
	return c.JSON(http.StatusCreated, echo.Map{"message": "Message received", "_id": m.ID})
}
