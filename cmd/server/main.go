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

	"github.com/avdeyev/webshop/internal/config"
	"github.com/avdeyev/webshop/internal/es"
	"github.com/avdeyev/webshop/internal/handlers"
	"github.com/avdeyev/webshop/internal/logging"
	"github.com/avdeyev/webshop/internal/mykafka"
	"github.com/avdeyev/webshop/internal/repo"
	"github.com/avdeyev/webshop/internal/service/inventory"
	"github.com/avdeyev/webshop/internal/service/token"
	httpserver "github.com/avdeyev/webshop/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(context.Background(), configuration)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	prod, err := mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS})
	if err != nil {
		logger.Warn("kafka disabled", "error", err)
		prod = nil
	}

	var searchHandler *handlers.SearchHandler
	var indexer *es.Indexer
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		searchHandler = &handlers.SearchHandler{ES: esClient, Index: configuration.ES_INDEX}
		indexer = &es.Indexer{Client: esClient, Index: configuration.ES_INDEX}
	} else {
		logger.Warn("search disabled: ES_URL not set")
	}

	users := &repo.UserRepo{DB: db}
	products := &repo.ProductRepo{DB: db}
	orders := &repo.OrderRepo{DB: db}
	lines := &repo.OrderLineRepo{DB: db}

	inv := inventory.New(products, orders, lines)
	tokens := &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		DB: db,
		AuthHandler: &handlers.AuthHandler{
			Users: users, Tokens: tokens, Producer: prod,
			JWTSecret: jwtSecret, RefreshSecret: refreshSecret,
		},
		UserHandler:    &handlers.UserHandler{Users: users},
		ProductHandler: &handlers.ProductHandler{Products: products, Producer: prod, Indexer: indexer},
		OrderHandler:   &handlers.OrderHandler{Inventory: inv, Orders: orders, Lines: lines, Producer: prod},
		SearchHandler:  searchHandler,
		TokenService:   tokens,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
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
	logger.Info("server started", "addr", configuration.HTTP_ADDR)

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
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
