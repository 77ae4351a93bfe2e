package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	appaudit "github.com/yms2/mes-core/internal/application/audit"
	appbom "github.com/yms2/mes-core/internal/application/bom"
	"github.com/yms2/mes-core/internal/application/inventory"
	"github.com/yms2/mes-core/internal/infrastructure/postgres"
	httpRouter "github.com/yms2/mes-core/internal/interfaces/http"
	"github.com/yms2/mes-core/pkg/config"
	"github.com/yms2/mes-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	bomRepo := postgres.NewBomRepository(pool)
	invRepo := postgres.NewInventoryRepository(pool)
	lotRepo := postgres.NewLotRepository(pool)
	auditRepo := postgres.NewAdjustmentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	explodeUC := appbom.NewExplodeUseCase(bomRepo, productRepo, invRepo, log)
	adjustUC := inventory.NewAdjustStockUseCase(txRunner, invRepo, auditRepo, log)
	lotUC := inventory.NewLotUseCase(txRunner, productRepo, lotRepo, auditRepo, log)
	reconcileUC := inventory.NewReconcileUseCase(adjustUC, lotUC, log)
	auditUC := appaudit.NewUseCase(auditRepo, invRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "MES Core API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ExplodeUC:   explodeUC,
		AdjustStock: adjustUC,
		LotUC:       lotUC,
		ReconcileUC: reconcileUC,
		AuditUC:     auditUC,
		JWTSecret:   cfg.JWT.Secret,
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
