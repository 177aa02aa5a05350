package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_rest/internal/service"
	"github.com/Skotchmaster/store_rest/internal/transport"
	"github.com/Skotchmaster/store_rest/internal/util"
	"github.com/Skotchmaster/store_rest/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id := pathID(c, l)

	product, err := h.Svc.GetProduct(ctx, principal(c), id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, transport.ToProduct(*product))
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	p := paging(c, util.DefaultPageSize)
	total, items, err := h.Svc.ListProducts(ctx, principal(c), p.offset, p.limit)
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.ProductResponse]{
		Data: transport.Map(items, transport.ToProduct),
		Meta: p.meta(total),
	})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	p := paging(c, util.DefaultPageSize)
	total, items, err := h.Svc.SearchProducts(ctx, principal(c), c.QueryParam("q"), p.offset, p.limit)
	if err != nil {
		return fail(l, "search_products_error", err)
	}

	return c.JSON(http.StatusOK, transport.ListResponse[transport.ProductResponse]{
		Data: transport.Map(items, transport.ToProduct),
		Meta: p.meta(total),
	})
}

func (h *CatalogHTTP) HighOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.high_orders")

	items, err := h.Svc.HighOrderProducts(ctx, principal(c))
	if err != nil {
		return fail(l, "high_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.Map(items, transport.ToProduct))
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_product_error", err)
	}

	product, err := h.Svc.CreateProduct(ctx, principal(c), req)
	if err != nil {
		return fail(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, transport.ToProduct(*product))
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	id := pathID(c, l)
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_product_error", err)
	}

	product, err := h.Svc.UpdateProduct(ctx, principal(c), id, req)
	if err != nil {
		return fail(l, "update_product_error", err)
	}

	l.Info("update_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, transport.ToProduct(*product))
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id := pathID(c, l)
	if err := h.Svc.DeleteProduct(ctx, principal(c), id); err != nil {
		return fail(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
