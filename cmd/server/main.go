package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mgbucal/kapehan/internal/config"
	"github.com/mgbucal/kapehan/internal/es"
	"github.com/mgbucal/kapehan/internal/handlers"
	"github.com/mgbucal/kapehan/internal/handlers/cart"
	"github.com/mgbucal/kapehan/internal/logging"
	"github.com/mgbucal/kapehan/internal/mykafka"
	"github.com/mgbucal/kapehan/internal/service/token"
	httpserver "github.com/mgbucal/kapehan/internal/transport/http"
)

const productIndex = "product"

func main() {
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	brokers := []string{configuration.KAFKA_ADDRESS}
	topics := []string{"user_events", "cart_events", "product_events", "order_events"}
	prod, err := mykafka.NewProducer(brokers, topics)
	if err != nil {
		log.Fatal(err)
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB:                  db,
		AuthHandler:         &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		ProductHandler:      &handlers.ProductHandler{DB: db, Producer: prod, ES: esClient, Index: productIndex, JWTSecret: jwtSecret},
		ProfileHandler:      &handlers.ProfileHandler{DB: db, JWTSecret: jwtSecret},
		CartHandler:         &cart.CartHandler{DB: db, Producer: prod, JWTSecret: jwtSecret},
		OrderHandler:        &handlers.OrderHandler{DB: db, Producer: prod},
		OnsiteHandler:       &handlers.OnsiteHandler{DB: db, Producer: prod},
		NotificationHandler: &handlers.NotificationHandler{DB: db},
		SearchHandler:       &handlers.SearchHandler{ES: esClient, Index: productIndex},
		TokenService:        &token.TokenService{DB: db, RefreshSecret: refreshSecret, JWTSecret: jwtSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "addr", srv.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db handle error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
