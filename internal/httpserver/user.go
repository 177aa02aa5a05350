package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_rest/internal/service"
	"github.com/Skotchmaster/store_rest/internal/transport"
	"github.com/Skotchmaster/store_rest/internal/util"
	"github.com/Skotchmaster/store_rest/pkg/logging"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req transport.UserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}

	user, err := h.Svc.Register(ctx, principal(c), req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, transport.ToUser(*user))
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list_users")

	p := paging(c, util.DefaultPageSize)
	total, users, err := h.Svc.ListUsers(ctx, principal(c), p.offset, p.limit)
	if err != nil {
		return fail(l, "list_users_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.UserResponse]{
		Data: transport.Map(users, transport.ToUser),
		Meta: p.meta(total),
	})
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get_user")

	id := pathID(c, l)

	user, err := h.Svc.GetUser(ctx, principal(c), id)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, transport.ToUser(*user))
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_user")

	id := pathID(c, l)
	var req transport.UserRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_user_error", err)
	}

	user, err := h.Svc.UpdateUser(ctx, principal(c), id, req)
	if err != nil {
		return fail(l, "update_user_error", err)
	}

	l.Info("update_user_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, transport.ToUser(*user))
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_user")

	id := pathID(c, l)
	if err := h.Svc.DeactivateUser(ctx, principal(c), id); err != nil {
		return fail(l, "delete_user_error", err)
	}

	l.Info("delete_user_success", "user_id", id)
	return c.NoContent(http.StatusNoContent)
}

// UserOrders returns the order items across the user's orders, ten per page.
func (h *UserHTTP) UserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.user_orders")

	id := pathID(c, l)

	p := paging(c, util.UserOrdersPageSize)
	total, items, err := h.Svc.UserOrders(ctx, principal(c), id, p.offset, p.limit)
	if err != nil {
		return fail(l, "user_orders_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.OrderItemResponse]{
		Data: transport.Map(items, transport.ToOrderItem),
		Meta: p.meta(total),
	})
}
