package main // Entry point for the quick-sale register service

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pos-quick-sale/internal/backend"
	"github.com/iliyamo/pos-quick-sale/internal/catalog"
	"github.com/iliyamo/pos-quick-sale/internal/config"
	"github.com/iliyamo/pos-quick-sale/internal/gateway"
	"github.com/iliyamo/pos-quick-sale/internal/handler"
	"github.com/iliyamo/pos-quick-sale/internal/queue"
	"github.com/iliyamo/pos-quick-sale/internal/register"
	"github.com/iliyamo/pos-quick-sale/internal/router"
	queue_publisher "github.com/iliyamo/pos-quick-sale/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env vars directly
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Env == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Remote backend client: catalog fetches, code lookups, sale
	// submission.
	client := backend.New(cfg.BackendBaseURL, cfg.BackendTimeout, logger)
	defer func() { _ = client.Close() }()

	store := catalog.NewStore(client, cfg.CatalogTTL, logger)
	registry := register.NewRegistry()
	gw := gateway.New(client, store, queue_publisher.PublishSaleCommitted, logger)
	pos := handler.NewPOSHandler(store, client, registry, gw, logger)

	// Redis backs rate limiting and the catalog response cache; nil
	// disables both.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; rate limiting and response cache disabled")
	}

	// Background consumer appends committed sales to logs/sales.log.
	go func() {
		if err := queue.StartSaleConsumer(); err != nil {
			logger.Warn("sale consumer stopped", zap.Error(err))
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterPOS(e, pos, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
