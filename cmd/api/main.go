package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/invorya/stock-ledger/internal/application/audit"
	"github.com/invorya/stock-ledger/internal/application/catalog"
	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/domain/repository"
	"github.com/invorya/stock-ledger/internal/infrastructure/memory"
	"github.com/invorya/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/invorya/stock-ledger/internal/interfaces/http"
	"github.com/invorya/stock-ledger/pkg/config"
	"github.com/invorya/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.Stock.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var (
		runner       ledger.TxRunner
		productRepo  repository.ProductRepository
		snapshotRepo repository.SnapshotRepository
		txRepo       repository.TransactionRepository
	)

	switch cfg.Stock.Driver {
	case "memory":
		store := memory.NewStore(cfg.Stock.LockTimeout)
		runner = memory.NewTxRunner(store)
		productRepo = memory.NewProductRepository(store)
		snapshotRepo = memory.NewSnapshotRepository(store)
		txRepo = memory.NewTransactionRepository(store)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		runner = postgres.NewTxRunner(pool, cfg.Stock.LockTimeout)
		productRepo = postgres.NewProductRepository(pool)
		snapshotRepo = postgres.NewSnapshotRepository(pool)
		txRepo = postgres.NewTransactionRepository(pool)
	}

	ledgerUC := ledger.NewUseCase(runner, productRepo, snapshotRepo, txRepo, log, ledger.Options{
		MaxAttempts: cfg.Stock.MaxRetries,
	})
	catalogUC := catalog.NewUseCase(productRepo)
	auditUC := audit.NewUseCase(productRepo, snapshotRepo, txRepo, runner, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LedgerUC:  ledgerUC,
		CatalogUC: catalogUC,
		AuditUC:   auditUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
