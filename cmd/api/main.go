package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-sucursales/internal/application/inventory"
	"github.com/jhoicas/inventario-sucursales/internal/domain/entity"
	infrakafka "github.com/jhoicas/inventario-sucursales/internal/infrastructure/kafka"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-sucursales/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-sucursales/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-sucursales/internal/interfaces/http"
	"github.com/jhoicas/inventario-sucursales/pkg/config"
	"github.com/jhoicas/inventario-sucursales/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()

	// Persistencia: PostgreSQL en producción, memoria para demo local.
	var (
		deps inventory.Deps
		pool *pgxpool.Pool
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		seedDemo(store)
		deps = store.Deps()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err = postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		deps = postgres.Deps(pool)
	}

	collector := metrics.NewCollector(prometheus.DefaultRegisterer)
	deps.Metrics = collector

	// Eventos del libro hacia Kafka (opcional).
	if cfg.Kafka.Enabled() {
		publisher, err := infrakafka.NewPublisher(cfg.Kafka, log)
		if err != nil {
			log.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("productor Kafka")
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		deps.Events = publisher
	} else {
		log.Info().Msg("KAFKA_BROKERS vacío: publicación de eventos deshabilitada")
	}

	ledger := inventory.NewStockLedger(deps, log)
	transfers := inventory.NewTransferWorkflow(deps, ledger, log)
	bags := inventory.NewOpenBagTracker(deps, ledger, log)
	counts := inventory.NewReconciliationEngine(ledger, log)
	// PDF: remito de traslado
	deliveryNotes := inventory.NewDeliveryNotes(deps, infrapdf.NewMarotoPDFGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log, collector))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario Sucursales API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger no disponible")
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver}
		if pool != nil {
			pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			if err := postgres.Ping(pingCtx, pool); err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(status)
			}
		}
		return c.JSON(status)
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:        ledger,
		Transfers:     transfers,
		Bags:          bags,
		Counts:        counts,
		DeliveryNotes: deliveryNotes,
		JWTSecret:     cfg.JWT.Secret,
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

// seedDemo carga sucursales y productos de ejemplo para el modo en memoria.
func seedDemo(store *memory.Store) {
	store.SeedBranch(entity.Branch{ID: "suc-centro", Name: "Sucursal Centro"})
	store.SeedBranch(entity.Branch{ID: "suc-norte", Name: "Sucursal Norte"})
	store.SeedBranch(entity.Branch{ID: "suc-sur", Name: "Sucursal Sur"})
	store.SeedProduct(entity.Product{ID: "prod-arroz", SKU: "ARR-1KG", Name: "Arroz 1kg", MinStock: decimal.NewFromInt(10)})
	store.SeedProduct(entity.Product{ID: "prod-azucar", SKU: "AZU-1KG", Name: "Azúcar 1kg", MinStock: decimal.NewFromInt(10)})
	store.SeedProduct(entity.Product{ID: "prod-alimento-perro", SKU: "ALP-20KG", Name: "Alimento perro 20kg", MinStock: decimal.NewFromInt(2), IsWeighted: true})
}
