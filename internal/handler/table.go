package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/service"
)

// TableHandler exposes the table registry's HTTP surface.
type TableHandler struct {
	svc *service.TableService
}

// NewTableHandler returns a TableHandler.
func NewTableHandler(svc *service.TableService) *TableHandler {
	return &TableHandler{svc: svc}
}

// List handles GET /api/tables.
func (h *TableHandler) List(c echo.Context) error {
	tables, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, model.TableList{Tables: tables})
}

// Create handles POST /api/tables.
func (h *TableHandler) Create(c echo.Context) error {
	var req model.CreateTable
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	table, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, table)
}

// Get handles GET /api/tables/:id.
func (h *TableHandler) Get(c echo.Context) error {
	table, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

// Update handles PUT /api/tables/:id.
func (h *TableHandler) Update(c echo.Context) error {
	var upd model.UpdateTable
	if err := c.Bind(&upd); err != nil {
		return badRequest(c, "invalid request body")
	}
	table, err := h.svc.Update(c.Request().Context(), c.Param("id"), upd)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

// UpdateStatus handles PUT /api/tables/:id/status?status=.
func (h *TableHandler) UpdateStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		return badRequest(c, "status query parameter is required")
	}
	table, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("id"), status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

// Delete handles DELETE /api/tables/:id.
func (h *TableHandler) Delete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"detail": "table deleted"})
}

// Assign handles POST /api/tables/assign.
func (h *TableHandler) Assign(c echo.Context) error {
	var req model.TableAssignment
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	table, err := h.svc.Assign(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, table)
}
