package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Reainz/restaurant-system/internal/config"
	"github.com/Reainz/restaurant-system/internal/handler"
	"github.com/Reainz/restaurant-system/internal/middleware"
)

// RegisterMenu mounts the menu service's routes. Read endpoints sit
// behind the Redis response cache; rdb may be nil, which disables it.
func RegisterMenu(e *echo.Echo, h *handler.MenuHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/health", handler.Health("menu"))

	cached := middleware.MenuCache(cacheCfg, rdb)
	g := e.Group("/api")
	g.GET("/menu-items", h.List, cached)
	g.GET("/menu-items/:id", h.Get, cached)
	g.GET("/menu-categories", h.Categories, cached)
	g.POST("/menu-items", h.Create)
	g.PUT("/menu-items/:id", h.Update)
	g.DELETE("/menu-items/:id", h.Delete)
}
