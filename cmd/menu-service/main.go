package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Reainz/restaurant-system/internal/config"
	"github.com/Reainz/restaurant-system/internal/database"
	"github.com/Reainz/restaurant-system/internal/handler"
	"github.com/Reainz/restaurant-system/internal/repository"
	"github.com/Reainz/restaurant-system/internal/router"
)

func main() {
	_ = godotenv.Load()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load("8003", "menu_service")
	log := logrus.WithField("service", "menu")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.MongoURL, cfg.DBName)
	if err != nil {
		log.WithField("error", err).Fatal("could not connect to database")
	}
	defer database.Disconnect(context.Background(), db)
	if err := database.EnsureMenuIndexes(ctx, db); err != nil {
		log.WithField("error", err).Fatal("could not create indexes")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, serving uncached")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.RegisterMenu(e, handler.NewMenuHandler(repository.NewMenuRepo(db)), config.LoadCacheConfig(), rdb)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.WithField("error", err).Error("server shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("menu service listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.WithField("error", err).Info("server stopped")
	}
}
