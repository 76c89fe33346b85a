package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Reainz/restaurant-system/internal/model"
	"github.com/Reainz/restaurant-system/internal/repository"
)

// MenuHandler exposes the catalog CRUD of the menu service. The catalog
// rules are plain storage access, so the handler talks to the repository
// directly.
type MenuHandler struct {
	repo *repository.MenuRepo
	now  func() time.Time
}

// NewMenuHandler returns a MenuHandler.
func NewMenuHandler(repo *repository.MenuRepo) *MenuHandler {
	return &MenuHandler{repo: repo, now: time.Now}
}

// List handles GET /api/menu-items. Filters: category, menu_type,
// available.
func (h *MenuHandler) List(c echo.Context) error {
	filter := repository.MenuFilter{
		Category: c.QueryParam("category"),
		MenuType: c.QueryParam("menu_type"),
	}
	if raw := c.QueryParam("available"); raw != "" {
		available := raw == "true"
		filter.Available = &available
	}
	items, err := h.repo.Find(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]model.MenuItem{"items": items})
}

// Get handles GET /api/menu-items/:id.
func (h *MenuHandler) Get(c echo.Context) error {
	item, err := h.repo.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles POST /api/menu-items.
func (h *MenuHandler) Create(c echo.Context) error {
	var item model.MenuItem
	if err := c.Bind(&item); err != nil {
		return badRequest(c, "invalid request body")
	}
	if item.Name == "" {
		return badRequest(c, "name is required")
	}
	if item.Price < 0 {
		return badRequest(c, "price must not be negative")
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := h.now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := h.repo.Insert(c.Request().Context(), &item); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

// Update handles PUT /api/menu-items/:id.
func (h *MenuHandler) Update(c echo.Context) error {
	var upd model.UpdateMenuItem
	if err := c.Bind(&upd); err != nil {
		return badRequest(c, "invalid request body")
	}
	if upd.Price != nil && *upd.Price < 0 {
		return badRequest(c, "price must not be negative")
	}
	item, err := h.repo.Update(c.Request().Context(), c.Param("id"), upd, h.now().UTC())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /api/menu-items/:id.
func (h *MenuHandler) Delete(c echo.Context) error {
	if err := h.repo.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"detail": "menu item deleted"})
}

// Categories handles GET /api/menu-categories.
func (h *MenuHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]model.MenuCategory{"categories": model.MenuCategories})
}
