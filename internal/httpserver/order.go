package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/fashion_shop/internal/logging"
	authmw "github.com/Skotchmaster/fashion_shop/internal/middleware/auth"
	"github.com/Skotchmaster/fashion_shop/internal/service"
	"github.com/Skotchmaster/fashion_shop/internal/transport"
	"github.com/Skotchmaster/fashion_shop/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	userID, err := currentUser(c, l, "create_order_error")
	if err != nil {
		return err
	}
	var req transport.CreateOrderRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "create_order_error", err)
	}

	order, err := h.Svc.PlaceOrder(ctx, userID, req)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID, "total", order.TotalPrice)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_orders")

	userID, err := currentUser(c, l, "get_my_orders_error")
	if err != nil {
		return err
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListMyOrders(ctx, userID, offset, limit)
	if err != nil {
		return fail(l, "get_my_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": util.NewMeta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := currentUser(c, l, "get_order_error")
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_order_error", "id is not a uuid", err)
	}

	order, err := h.Svc.GetOrder(ctx, service.Actor{UserID: userID, IsAdmin: authmw.IsAdmin(c)}, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) PayOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.pay")

	userID, err := currentUser(c, l, "pay_order_error")
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "pay_order_error", "id is not a uuid", err)
	}
	var req transport.PayOrderRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "pay_order_error", err)
	}

	order, err := h.Svc.MarkPaid(ctx, service.Actor{UserID: userID, IsAdmin: authmw.IsAdmin(c)}, id, req)
	if err != nil {
		return fail(l, "pay_order_error", err)
	}

	l.Info("pay_order_success", "order_id", id)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, orders, err := h.Svc.ListOrders(ctx, c.QueryParam("status"), offset, limit)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": util.NewMeta(page, offset, limit, total),
	})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_order_status_error", "id is not a uuid", err)
	}
	var req transport.UpdateOrderStatusRequest
	if err := bindStrict(c, &req); err != nil {
		return fail(l, "update_order_status_error", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req)
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	l.Info("update_order_status_success", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}
