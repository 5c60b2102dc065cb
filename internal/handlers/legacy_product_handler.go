package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalog/internal/dto"
	"catalog/internal/services"
)

// LegacyProductHandler serves the historical /api/products surface kept
// for old clients: flat unpaginated lists with no status filtering, a
// name-only search and the count/total-value stats aggregate. New
// clients should use /api/v1/products.
type LegacyProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewLegacyProductHandler creates a new LegacyProductHandler.
func NewLegacyProductHandler(service *services.ProductService) *LegacyProductHandler {
	return &LegacyProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the legacy product routes.
func (h *LegacyProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	g := router.Group("/products")
	g.Get("/", h.HandleListAll)
	g.Get("/search", h.HandleSearch)
	g.Get("/low-stock", h.HandleLowStock)
	g.Get("/stats", h.HandleStats)
	g.Get("/:id", h.HandleGetByID)
	g.Post("/", auth, h.HandleCreate)
	g.Put("/:id", auth, h.HandleUpdate)
	g.Delete("/:id", auth, h.HandleDelete)
}

// HandleListAll returns every product row as a flat list, soft-deleted
// rows included. Legacy behavior, intentionally unfiltered.
func (h *LegacyProductHandler) HandleListAll(c *fiber.Ctx) error {
	products, err := h.service.ListAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleGetByID returns a single product.
func (h *LegacyProductHandler) HandleGetByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.service.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleSearch returns products whose name contains the term. The legacy
// search matches the name only.
func (h *LegacyProductHandler) HandleSearch(c *fiber.Ctx) error {
	products, err := h.service.SearchByName(c.Query("name"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleLowStock returns active products with quantity in (0, threshold].
func (h *LegacyProductHandler) HandleLowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", defaultLowStockThreshold)
	products, err := h.service.ListLowStock(threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleStats returns the legacy aggregates. The total value sums
// price x quantity over every row, soft-deleted rows included; this
// deviates from the active-only convention of the v1 surface and is kept
// for compatibility.
func (h *LegacyProductHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// HandleCreate creates a product. The legacy surface answers 200, not 201.
func (h *LegacyProductHandler) HandleCreate(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	product, err := h.service.Create(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleUpdate replaces an existing product.
func (h *LegacyProductHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	product, err := h.service.Update(id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleDelete deletes a product. The row is soft deleted like on the v1
// surface; the legacy contract only promised a 200.
func (h *LegacyProductHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
