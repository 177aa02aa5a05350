package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_rest/internal/service"
	"github.com/Skotchmaster/store_rest/internal/transport"
	"github.com/Skotchmaster/store_rest/internal/util"
	"github.com/Skotchmaster/store_rest/pkg/logging"
)

const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 255

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLen {
		l.Warn("create_order_error", "status", 400, "reason", "idempotency key too long")
		return echo.NewHTTPError(http.StatusBadRequest, "idempotency key too long")
	}

	var req transport.OrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_order_error", err)
	}

	order, err := h.Svc.CreateOrder(ctx, principal(c), req, key)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, transport.ToOrder(*order))
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	p := paging(c, util.DefaultPageSize)
	total, orders, err := h.Svc.ListOrders(ctx, principal(c), p.offset, p.limit)
	if err != nil {
		return fail(l, "get_orders_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.OrderResponse]{
		Data: transport.Map(orders, transport.ToOrder),
		Meta: p.meta(total),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id := pathID(c, l)

	order, err := h.Svc.GetOrder(ctx, principal(c), id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.ToOrder(*order))
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id := pathID(c, l)
	var req transport.OrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_order_error", err)
	}

	order, err := h.Svc.UpdateOrder(ctx, principal(c), id, req)
	if err != nil {
		return fail(l, "update_order_error", err)
	}

	l.Info("update_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, transport.ToOrder(*order))
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id := pathID(c, l)
	if err := h.Svc.DeleteOrder(ctx, principal(c), id); err != nil {
		return fail(l, "delete_order_error", err)
	}

	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

type OrderItemHTTP struct {
	Svc *service.OrderService
}

func (h *OrderItemHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.create_item")

	var req transport.OrderItemRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_item_error", err)
	}

	item, err := h.Svc.CreateItem(ctx, principal(c), req)
	if err != nil {
		return fail(l, "create_item_error", err)
	}

	l.Info("create_item_success", "item_id", item.ID)
	return c.JSON(http.StatusCreated, transport.ToOrderItem(*item))
}

func (h *OrderItemHTTP) GetItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.get_items")

	p := paging(c, util.DefaultPageSize)
	total, items, err := h.Svc.ListItems(ctx, principal(c), p.offset, p.limit)
	if err != nil {
		return fail(l, "get_items_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.OrderItemResponse]{
		Data: transport.Map(items, transport.ToOrderItem),
		Meta: p.meta(total),
	})
}

func (h *OrderItemHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.get_item")

	id := pathID(c, l)

	item, err := h.Svc.GetItem(ctx, principal(c), id)
	if err != nil {
		return fail(l, "get_item_error", err)
	}
	return c.JSON(http.StatusOK, transport.ToOrderItem(*item))
}

func (h *OrderItemHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.update_item")

	id := pathID(c, l)
	var req transport.OrderItemRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_item_error", err)
	}

	item, err := h.Svc.UpdateItem(ctx, principal(c), id, req)
	if err != nil {
		return fail(l, "update_item_error", err)
	}

	l.Info("update_item_success", "item_id", item.ID)
	return c.JSON(http.StatusOK, transport.ToOrderItem(*item))
}

func (h *OrderItemHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order_item.delete_item")

	id := pathID(c, l)
	if err := h.Svc.DeleteItem(ctx, principal(c), id); err != nil {
		return fail(l, "delete_item_error", err)
	}

	l.Info("delete_item_success", "item_id", id)
	return c.NoContent(http.StatusNoContent)
}
