package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopwave/storefront/internal/service"
	"github.com/shopwave/storefront/internal/transport"
	"github.com/shopwave/storefront/internal/util"
	"github.com/shopwave/storefront/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	res, err := h.Svc.ListProducts(ctx, c.QueryParam("q"), page)
	if err != nil {
		l.Error("get_products_error", "status", 500, "error", err)
		return httpError(http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, transport.NewProductListResponse(res))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	product, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			l.Warn("get_product_failed", "status", 404, "error", err)
			return httpError(http.StatusNotFound, msgProductNotFound)
		}
		l.Error("get_product_failed", "status", 500, "error", err)
		return httpError(http.StatusInternalServerError, msgInternal)
	}

	return c.JSON(http.StatusOK, transport.NewProductResponse(product))
}
