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

	"github.com/Reainz/restaurant-system/internal/client"
	"github.com/Reainz/restaurant-system/internal/config"
	"github.com/Reainz/restaurant-system/internal/database"
	"github.com/Reainz/restaurant-system/internal/handler"
	"github.com/Reainz/restaurant-system/internal/notify"
	"github.com/Reainz/restaurant-system/internal/repository"
	"github.com/Reainz/restaurant-system/internal/router"
	"github.com/Reainz/restaurant-system/internal/service"
)

func main() {
	_ = godotenv.Load()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg := config.Load("8002", "table_bill_service")
	log := logrus.WithField("service", "table-bill")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.MongoURL, cfg.DBName)
	if err != nil {
		log.WithField("error", err).Fatal("could not connect to database")
	}
	defer database.Disconnect(context.Background(), db)
	if err := database.EnsureTableBillIndexes(ctx, db); err != nil {
		log.WithField("error", err).Fatal("could not create indexes")
	}

	orderTracker := client.NewTracker("order", cfg.OrderServiceURL)
	menuTracker := client.NewTracker("menu", cfg.MenuServiceURL)
	orders := client.NewOrderClient(cfg.OrderServiceURL, orderTracker)
	menu := client.NewMenuClient(cfg.MenuServiceURL, menuTracker)

	outbox := notify.NewOutbox(cfg.OutboxBuffer)
	outbox.Start(ctx)
	relay := notify.NewRelay(cfg.WebhookURL, outbox)

	billRepo := repository.NewBillRepo(db)
	tables := service.NewTableService(repository.NewTableRepo(db), relay)
	bills := service.NewBillService(billRepo, tables, orders, menu, relay)
	consistency := service.NewConsistencyService(billRepo, orders, menu, relay)
	notifications := service.NewNotificationService(billRepo, bills, consistency)

	if cfg.SyncEnabled {
		go service.NewSyncer(billRepo, consistency, cfg.SyncInterval).Run(ctx)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.RegisterTableBill(e,
		handler.NewTableHandler(tables),
		handler.NewBillHandler(bills, consistency, notifications),
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.WithField("error", err).Error("server shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("table/bill service listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.WithField("error", err).Info("server stopped")
	}
	outbox.Wait()
}
