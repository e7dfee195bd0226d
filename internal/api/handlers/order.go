package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/omishoninjp-sys/daigo/internal/service"
)

// OrderHandler handles listing-creation requests
type OrderHandler struct {
	service DaigoService
}

// NewOrderHandler creates an order handler
func NewOrderHandler(service DaigoService) *OrderHandler {
	return &OrderHandler{service: service}
}

type createOrderRequest struct {
	URL           string `json:"url"`
	TitleOverride string `json:"title_override"`
}

// Create handles POST /api/create-order: extraction, pricing and
// storefront listing in one request.
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.URL == "" {
		return badRequest(c, "url is required")
	}

	_, listing, err := h.service.CreateOrder(c.Context(), req.URL, req.TitleOverride)
	if err != nil {
		return failWith(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"product_id":   listing.ProductID,
		"checkout_url": listing.CheckoutURL,
		"admin_url":    listing.AdminURL,
	})
}

// CreateManual handles POST /api/create-manual for listings entered by
// hand when a site cannot be scraped.
func (h *OrderHandler) CreateManual(c *fiber.Ctx) error {
	var req service.ManualOrder
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	listing, err := h.service.CreateManual(c.Context(), req)
	if err != nil {
		return failWith(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"product_id":   listing.ProductID,
		"checkout_url": listing.CheckoutURL,
		"admin_url":    listing.AdminURL,
	})
}
