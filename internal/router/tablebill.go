package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Reainz/restaurant-system/internal/handler"
)

// RegisterTableBill mounts the table/bill service's routes.
func RegisterTableBill(e *echo.Echo, tables *handler.TableHandler, bills *handler.BillHandler) {
	e.GET("/health", handler.Health("table-bill"))

	g := e.Group("/api")

	// The order service posts terminal order statuses here.
	g.POST("/orders/status", bills.OrderStatusNotification)

	g.GET("/tables", tables.List)
	g.POST("/tables", tables.Create)
	g.POST("/tables/assign", tables.Assign)
	g.GET("/tables/:id", tables.Get)
	g.PUT("/tables/:id", tables.Update)
	g.DELETE("/tables/:id", tables.Delete)
	g.PUT("/tables/:id/status", tables.UpdateStatus)

	g.GET("/bills", bills.List)
	g.POST("/bills", bills.Create)
	g.GET("/bills/:id", bills.Get)
	g.PUT("/bills/:id", bills.Update)
	g.PUT("/bills/:id/payment-status", bills.UpdatePaymentStatus)
	g.POST("/bills/:id/refresh", bills.Refresh)
	g.GET("/bills/:id/verify", bills.Verify)
	g.POST("/bills/:id/reconcile", bills.Reconcile)
	g.GET("/bills/:id/receipt", bills.Receipt)
}
