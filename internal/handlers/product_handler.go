package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalog/internal/apperrors"
	"catalog/internal/dto"
	"catalog/internal/services"
)

const defaultLowStockThreshold = 10

var productSortFields = map[string]string{
	"name":      "name",
	"price":     "price",
	"quantity":  "quantity",
	"createdAt": "created_at",
}

// ProductHandler handles HTTP requests for the /v1/products surface.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the product routes. Mutating routes are
// wrapped with the auth middleware; reads are public.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	g := router.Group("/products")
	g.Get("/", h.HandleList)
	g.Get("/search", h.HandleSearch)
	g.Get("/low-stock", h.HandleLowStock)
	g.Get("/out-of-stock", h.HandleOutOfStock)
	g.Get("/price-range", h.HandlePriceRange)
	g.Get("/sku/:sku", h.HandleGetBySKU)
	g.Get("/category/:categoryId", h.HandleListByCategory)
	g.Get("/:id", h.HandleGetByID)
	g.Post("/", auth, h.HandleCreate)
	g.Put("/:id", auth, h.HandleUpdate)
	g.Patch("/:id/stock", auth, h.HandleUpdateStock)
	g.Delete("/:id", auth, h.HandleDelete)
}

// HandleList returns a page of active products, name ascending by default.
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	page, err := parsePageRequest(c, "name", productSortFields)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.service.List(page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleGetByID returns a single product, soft-deleted ones included.
func (h *ProductHandler) HandleGetByID(c *fiber.Ctx) error {
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

// HandleGetBySKU returns a single product looked up by SKU.
func (h *ProductHandler) HandleGetBySKU(c *fiber.Ctx) error {
	product, err := h.service.GetBySKU(c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleSearch returns a page of products matching the q term against
// name, description or brand.
func (h *ProductHandler) HandleSearch(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		return respondError(c, apperrors.InvalidArgument("search term 'q' is required"))
	}
	page, err := parsePageRequest(c, "name", productSortFields)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.service.Search(term, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleListByCategory returns a page of active products in the category.
func (h *ProductHandler) HandleListByCategory(c *fiber.Ctx) error {
	categoryID, err := parseID(c, "categoryId")
	if err != nil {
		return respondError(c, err)
	}
	page, err := parsePageRequest(c, "name", productSortFields)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.service.ListByCategory(categoryID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandlePriceRange returns a page of active products priced within
// [minPrice, maxPrice]. An inverted range is rejected here, before the
// service is invoked.
func (h *ProductHandler) HandlePriceRange(c *fiber.Ctx) error {
	minPrice, err := strconv.ParseFloat(c.Query("minPrice"), 64)
	if err != nil {
		return respondError(c, apperrors.InvalidArgument("minPrice must be a number"))
	}
	maxPrice, err := strconv.ParseFloat(c.Query("maxPrice"), 64)
	if err != nil {
		return respondError(c, apperrors.InvalidArgument("maxPrice must be a number"))
	}
	if minPrice > maxPrice {
		return respondError(c, apperrors.InvalidArgument("minimum price cannot be greater than maximum price"))
	}

	page, err := parsePageRequest(c, "price", productSortFields)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.service.ListByPriceRange(minPrice, maxPrice, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleLowStock returns the flat list of active products with quantity
// in (0, threshold].
func (h *ProductHandler) HandleLowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", defaultLowStockThreshold)
	if threshold < 1 {
		return respondError(c, apperrors.InvalidArgument("threshold must be at least 1"))
	}
	products, err := h.service.ListLowStock(threshold)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleOutOfStock returns the flat list of active products with zero
// quantity.
func (h *ProductHandler) HandleOutOfStock(c *fiber.Ctx) error {
	products, err := h.service.ListOutOfStock()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// HandleCreate creates a product.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
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
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdate fully replaces an existing product.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
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

// HandleUpdateStock patches only the quantity of a product.
func (h *ProductHandler) HandleUpdateStock(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	quantity, err := strconv.Atoi(c.Query("quantity"))
	if err != nil || quantity < 0 {
		return respondError(c, apperrors.InvalidArgument("quantity must be a non-negative integer"))
	}

	product, err := h.service.UpdateStock(id, quantity)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// HandleDelete soft deletes a product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
