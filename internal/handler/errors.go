// Package handler contains the echo HTTP handlers for the three
// services. Handlers bind and validate wire payloads, delegate to the
// service layer and translate its errors into HTTP statuses.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/Reainz/restaurant-system/internal/client"
	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
	"github.com/Reainz/restaurant-system/internal/service"
)

// writeError maps a service-layer error onto the wire. Bodies follow the
// {"detail": ...} shape throughout.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, service.ErrPrecondition):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, client.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, client.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		logrus.WithFields(logrus.Fields{
			"path":  c.Path(),
			"error": err,
		}).Error("request failed")
		return c.JSON(status, map[string]string{"detail": "internal server error"})
	}
	return c.JSON(status, map[string]string{"detail": err.Error()})
}

func badRequest(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"detail": detail})
}
