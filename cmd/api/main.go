package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	appstock "github.com/tavolo-pos/inventory-api/internal/application/stock"
	"github.com/tavolo-pos/inventory-api/internal/domain/stock"
	"github.com/tavolo-pos/inventory-api/internal/infrastructure/metrics"
	"github.com/tavolo-pos/inventory-api/internal/infrastructure/ops"
	"github.com/tavolo-pos/inventory-api/internal/infrastructure/postgres"
	httpRouter "github.com/tavolo-pos/inventory-api/internal/interfaces/http"
	"github.com/tavolo-pos/inventory-api/pkg/config"
	"github.com/tavolo-pos/inventory-api/pkg/logger"
)

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	if err := runMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}
	log.Info().Msg("migrations applied")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	itemRepo := postgres.NewStockItemRepository(pool)
	ledgerRepo := postgres.NewAdjustmentRepository(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.Stock.LockTimeout)

	classifier := stock.NewClassifier(decimal.NewFromFloat(cfg.Stock.DefaultMinStock))
	stockMetrics := metrics.New(prometheus.DefaultRegisterer)

	adjustUC := appstock.NewAdjustUseCase(txRunner, classifier, stockMetrics, appstock.AdjustConfig{
		MaxRetries: cfg.Stock.AdjustMaxRetries,
		Backoff:    cfg.Stock.AdjustRetryBackoff,
		Timeout:    cfg.Stock.AdjustTimeout,
	})
	catalogUC := appstock.NewCatalogUseCase(itemRepo, ledgerRepo, classifier)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI locally: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tavolo Inventory API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Adjust:    adjustUC,
		Catalog:   catalogUC,
		JWTSecret: cfg.JWT.Secret,
	})

	opsSrv := ops.New(cfg.Metrics.Addr, cfg.Metrics.Enabled)
	go func() {
		if err := opsSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("ops server finished")
		}
	}()

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server finished")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ops server shutdown")
	}

	log.Info().Msg("application stopped")
}
