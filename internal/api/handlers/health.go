package handlers

import (
	"github.com/gofiber/fiber/v2"
)

const version = "3.0.0"

// HealthCheck returns the health status with a per-site summary of the
// configured fetch strategies.
func HealthCheck(service DaigoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "daigo-api",
			"version":  version,
			"scrapers": service.StrategySummary(),
		})
	}
}

// Root returns basic API info
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "GOYOUTATI DAIGO API",
			"version": version,
			"health":  "/health",
		})
	}
}
