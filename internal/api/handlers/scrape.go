package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/omishoninjp-sys/daigo/internal/domain"
	"github.com/omishoninjp-sys/daigo/internal/pricing"
	"github.com/omishoninjp-sys/daigo/internal/service"
)

// DaigoService is the pipeline surface the handlers consume
type DaigoService interface {
	Scrape(ctx context.Context, url string) (*domain.Product, *domain.Pricing, error)
	CreateOrder(ctx context.Context, url, titleOverride string) (*domain.Product, *domain.Listing, error)
	CreateManual(ctx context.Context, order service.ManualOrder) (*domain.Listing, error)
	Engine() *pricing.Engine
	StrategySummary() map[string][]string
}

// ScrapeHandler handles extraction and pricing requests
type ScrapeHandler struct {
	service DaigoService
}

// NewScrapeHandler creates a scrape handler
func NewScrapeHandler(service DaigoService) *ScrapeHandler {
	return &ScrapeHandler{service: service}
}

type scrapeRequest struct {
	URL string `json:"url"`
}

// Scrape handles POST /api/scrape
func (h *ScrapeHandler) Scrape(c *fiber.Ctx) error {
	var req scrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.URL == "" {
		return badRequest(c, "url is required")
	}

	product, quote, err := h.service.Scrape(c.Context(), req.URL)
	if err != nil {
		return failWith(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"product": product,
		"pricing": quote,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   msg,
		"code":    "invalid_request",
	})
}

// failWith maps a pipeline failure to its HTTP status and emits the
// structured error envelope: a machine-readable code plus a
// human-readable message, never a partial success.
func failWith(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidURL), errors.Is(err, domain.ErrParseMalformed):
		status = fiber.StatusBadRequest
	case errors.Is(err, domain.ErrParseMissingField):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrExtractionExhausted):
		status = fiber.StatusBadGateway
		if errors.Is(err, domain.ErrFetchTimeout) {
			status = fiber.StatusGatewayTimeout
		}
	case errors.Is(err, domain.ErrListingFailed):
		status = fiber.StatusBadGateway
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
		"code":    domain.Code(err),
	})
}
