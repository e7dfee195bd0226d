package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/omishoninjp-sys/daigo/internal/api/handlers"
	"github.com/omishoninjp-sys/daigo/internal/api/middleware"
	"github.com/omishoninjp-sys/daigo/internal/config"
)

// Dependencies holds the service dependencies for handlers
type Dependencies struct {
	Daigo handlers.DaigoService
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, deps *Dependencies) {
	app.Get("/", handlers.Root())
	app.Get("/health", handlers.HealthCheck(deps.Daigo))

	api := app.Group("/api")

	// Read-only snapshot, consumed by the storefront theme directly
	rateHandler := handlers.NewRateHandler(deps.Daigo)
	api.Get("/rate", rateHandler.Get)

	// Extraction and listing routes require the shared secret
	auth := middleware.APIKeyAuth(cfg.Server.APIKey)

	scrapeHandler := handlers.NewScrapeHandler(deps.Daigo)
	api.Post("/scrape", auth, scrapeHandler.Scrape)

	orderHandler := handlers.NewOrderHandler(deps.Daigo)
	api.Post("/create-order", auth, orderHandler.Create)
	api.Post("/create-manual", auth, orderHandler.CreateManual)
}
