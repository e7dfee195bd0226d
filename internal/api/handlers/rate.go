package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RateHandler serves the pricing snapshot
type RateHandler struct {
	service DaigoService
}

// NewRateHandler creates a rate handler
func NewRateHandler(service DaigoService) *RateHandler {
	return &RateHandler{service: service}
}

// Get handles GET /api/rate: the current conversion rate and the active
// fee schedule, so the storefront can show the quote breakdown.
func (h *RateHandler) Get(c *fiber.Ctx) error {
	engine := h.service.Engine()
	rate, stale := engine.Rates().Rate(c.Context())

	return c.JSON(fiber.Map{
		"jpy_to_twd":    rate,
		"rate_stale":    stale,
		"pricing_tiers": engine.Schedule().Tiers(),
	})
}
