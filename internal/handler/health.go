package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health returns a liveness handler. Peer services probe this endpoint
// to decide whether to keep calling.
func Health(serviceName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": serviceName,
		})
	}
}
