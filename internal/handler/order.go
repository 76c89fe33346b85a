package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
	"github.com/Reainz/restaurant-system/internal/service"
)

// OrderHandler exposes the order service's HTTP surface.
type OrderHandler struct {
	svc *service.OrderService
}

// NewOrderHandler returns an OrderHandler.
func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	var req model.CreateOrder
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	order, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// List handles GET /api/orders. Filters: table_id, status (comma
// separated), skip, limit.
func (h *OrderHandler) List(c echo.Context) error {
	filter := repository.OrderFilter{
		TableID: c.QueryParam("table_id"),
		Skip:    atoiDefault(c.QueryParam("skip"), 0),
		Limit:   atoiDefault(c.QueryParam("limit"), 0),
	}
	if raw := c.QueryParam("status"); raw != "" {
		for _, token := range strings.Split(raw, ",") {
			status, err := model.ParseOrderStatus(strings.TrimSpace(token))
			if err != nil {
				return writeError(c, err)
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	orders, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, model.OrderList{Orders: orders})
}

// ListByTable handles GET /api/orders/table/:table_id.
func (h *OrderHandler) ListByTable(c echo.Context) error {
	orders, err := h.svc.List(c.Request().Context(), repository.OrderFilter{TableID: c.Param("table_id")})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, model.OrderList{Orders: orders})
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Update handles PUT /api/orders/:id.
func (h *OrderHandler) Update(c echo.Context) error {
	var upd model.UpdateOrder
	if err := c.Bind(&upd); err != nil {
		return badRequest(c, "invalid request body")
	}
	order, err := h.svc.Update(c.Request().Context(), c.Param("id"), upd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus handles PUT /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req model.OrderStatusUpdate
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	order, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateItem handles PUT /api/orders/:id/items/:item_id.
func (h *OrderHandler) UpdateItem(c echo.Context) error {
	var upd model.UpdateOrderItem
	if err := c.Bind(&upd); err != nil {
		return badRequest(c, "invalid request body")
	}
	order, err := h.svc.UpdateItem(c.Request().Context(), c.Param("id"), c.Param("item_id"), upd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c echo.Context) error {
	order, err := h.svc.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// Delete handles DELETE /api/orders/:id.
func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"detail": "order deleted"})
}

func atoiDefault(s string, def int64) int64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}
