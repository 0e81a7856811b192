package main

import (
	"context"
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devtrack/docs"
	"devtrack/internal/config"
	"devtrack/internal/database"
	"devtrack/internal/database/migration"
	handlers "devtrack/internal/http/handler"
	"devtrack/internal/http/middleware"
	"devtrack/internal/linkstore"
	"devtrack/internal/otel"
	"devtrack/internal/repository"
	"devtrack/internal/repository/postgres"
	"devtrack/internal/service"
	"devtrack/internal/sheets"
	"devtrack/internal/storage"
)

// @title DevTrack API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Postgres backs the update-history feature and is optional.
	var db *sql.DB
	var history repository.HistoryRepository
	if cfg.HistoryEnabled() {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		history = postgres.NewHistoryPostgres(db)
	}

	// Object storage backs the export feature and is optional too.
	var objStore storage.Storage
	if cfg.ExportEnabled() {
		objStore, err = storage.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	}

	sheetsClient, err := sheets.NewClient(ctx, cfg.Google.CredentialsFile, cfg.Google.MaxRetries)
	if err != nil {
		log.Fatalf("failed to initialize sheets client: %v", err)
	}

	linkStore, err := linkstore.NewFileStore(cfg.LinkFile)
	if err != nil {
		log.Fatalf("failed to open link store: %v", err)
	}

	svc := service.NewTrackerService(
		sheetsClient,
		linkStore,
		history,
		objStore,
		time.Duration(cfg.ExportURLExpirySec)*time.Second,
	)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, X-API-Key, X-Request-ID",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, svc, cfg)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
