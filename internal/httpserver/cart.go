package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_shop/internal/logging"
	authmw "github.com/Skotchmaster/fashion_shop/internal/middleware/auth"
	"github.com/Skotchmaster/fashion_shop/internal/service"
	"github.com/Skotchmaster/fashion_shop/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func currentUser(c echo.Context, l *slog.Logger, event string) (uuid.UUID, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		l.Warn(event, "status", http.StatusUnauthorized, "reason", "no user in context")
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := currentUser(c, l, "get_cart_error")
	if err != nil {
		return err
	}
	view, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := currentUser(c, l, "add_to_cart_error")
	if err != nil {
		return err
	}
	var req transport.AddToCartRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	view, err := h.Svc.AddToCart(ctx, userID, req)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "user_id", userID, "product_id", req.ProductID)
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	userID, err := currentUser(c, l, "update_cart_item_error")
	if err != nil {
		return err
	}
	lineID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return badRequest(l, "update_cart_item_error", "itemId is not a uuid", err)
	}
	var req transport.UpdateCartItemRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "update_cart_item_error", err)
	}

	view, err := h.Svc.UpdateCartItem(ctx, userID, lineID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) RemoveCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	userID, err := currentUser(c, l, "remove_cart_item_error")
	if err != nil {
		return err
	}
	lineID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return badRequest(l, "remove_cart_item_error", "itemId is not a uuid", err)
	}

	view, err := h.Svc.RemoveCartItem(ctx, userID, lineID)
	if err != nil {
		return fail(l, "remove_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := currentUser(c, l, "clear_cart_error")
	if err != nil {
		return err
	}
	if err := h.Svc.ClearCart(ctx, userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
