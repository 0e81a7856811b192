package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"devtrack/internal/config"
	"devtrack/internal/http/middleware"
	"devtrack/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin; all sheet semantics live in the service layer. db may be nil
// when history is disabled.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.TrackerService, cfg *config.AppConfig) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// Everything that touches the spreadsheet is API-key gated and rate
	// limited. The limiter protects the Sheets quota as much as this server.
	api := app.Group("/api",
		middleware.APIKey(cfg.HTTP.APIKey),
		limiter.New(limiter.Config{
			Max:        cfg.HTTP.RateLimitMax,
			Expiration: time.Duration(cfg.HTTP.RateLimitWindowSec) * time.Second,
		}),
	)

	api.Post("/sheet", LinkSheet(svc))
	api.Get("/sheet", GetSheetStatus(svc))
	api.Delete("/sheet", UnlinkSheet(svc))
	api.Post("/sheet/export", ExportSheet(svc))

	api.Get("/devices", ListDevices(svc))
	api.Patch("/devices/:device/completed", SetCompleted(svc))
	api.Patch("/devices/:device/comment", SetComment(svc))

	api.Get("/history", ListHistory(svc))
}
