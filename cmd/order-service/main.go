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

	cfg := config.Load("8001", "order_service")
	log := logrus.WithField("service", "order")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.MongoURL, cfg.DBName)
	if err != nil {
		log.WithField("error", err).Fatal("could not connect to database")
	}
	defer database.Disconnect(context.Background(), db)
	if err := database.EnsureOrderIndexes(ctx, db); err != nil {
		log.WithField("error", err).Fatal("could not create indexes")
	}

	tracker := client.NewTracker("table-bill", cfg.TableBillServiceURL)
	tableBill := client.NewTableBillClient(cfg.TableBillServiceURL, tracker)

	outbox := notify.NewOutbox(cfg.OutboxBuffer)
	outbox.Start(ctx)

	orders := service.NewOrderService(repository.NewOrderRepo(db), tableBill, outbox)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.RegisterOrder(e, handler.NewOrderHandler(orders))

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.WithField("error", err).Error("server shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("order service listening")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.WithField("error", err).Info("server stopped")
	}
	outbox.Wait()
}
