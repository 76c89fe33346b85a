// Package router wires handlers onto echo route groups, one file per
// service binary.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Reainz/restaurant-system/internal/handler"
)

// RegisterOrder mounts the order service's routes.
func RegisterOrder(e *echo.Echo, h *handler.OrderHandler) {
	e.GET("/health", handler.Health("order"))

	g := e.Group("/api")
	g.POST("/orders", h.Create)
	g.GET("/orders", h.List)
	g.GET("/orders/table/:table_id", h.ListByTable)
	g.GET("/orders/:id", h.Get)
	g.PUT("/orders/:id", h.Update)
	g.DELETE("/orders/:id", h.Delete)
	g.PUT("/orders/:id/status", h.UpdateStatus)
	g.PUT("/orders/:id/items/:item_id", h.UpdateItem)
	g.POST("/orders/:id/cancel", h.Cancel)
}
