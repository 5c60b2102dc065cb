package handlers

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalog/internal/apperrors"
	"catalog/internal/dto"
	"catalog/internal/services"
)

var categorySortFields = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
}

// CategoryHandler handles HTTP requests for the /v1/categories surface.
type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the category routes. Mutating routes are
// wrapped with the auth middleware; reads are public.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	g := router.Group("/categories")
	g.Get("/", h.HandleList)
	g.Get("/list", h.HandleListAll)
	g.Get("/search", h.HandleSearch)
	g.Get("/with-products", h.HandleListWithProducts)
	g.Get("/name/:name", h.HandleGetByName)
	g.Get("/:id", h.HandleGetByID)
	g.Post("/", auth, h.HandleCreate)
	g.Put("/:id", auth, h.HandleUpdate)
	g.Delete("/:id", auth, h.HandleDelete)
}

// HandleList returns a page of active categories, name ascending by
// default.
func (h *CategoryHandler) HandleList(c *fiber.Ctx) error {
	page, err := parsePageRequest(c, "name", categorySortFields)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.service.List(page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleListAll returns every active category as a flat list.
func (h *CategoryHandler) HandleListAll(c *fiber.Ctx) error {
	categories, err := h.service.ListAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// HandleGetByID returns a single category, soft-deleted ones included.
func (h *CategoryHandler) HandleGetByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	category, err := h.service.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

// HandleGetByName returns a single category looked up by exact name.
func (h *CategoryHandler) HandleGetByName(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil || name == "" {
		return respondError(c, apperrors.InvalidArgument("invalid category name"))
	}
	category, err := h.service.GetByName(name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

// HandleSearch returns a page of categories matching the q term against
// name or description.
func (h *CategoryHandler) HandleSearch(c *fiber.Ctx) error {
	term := c.Query("q")
	if term == "" {
		return respondError(c, apperrors.InvalidArgument("search term 'q' is required"))
	}
	page, err := parsePageRequest(c, "name", categorySortFields)
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.service.Search(term, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleListWithProducts returns active categories having at least one
// associated product of any status.
func (h *CategoryHandler) HandleListWithProducts(c *fiber.Ctx) error {
	categories, err := h.service.ListWithProducts()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// HandleCreate creates a category.
func (h *CategoryHandler) HandleCreate(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	category, err := h.service.Create(req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdate updates an existing category.
func (h *CategoryHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidation(c, err)
	}

	category, err := h.service.Update(id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(category)
}

// HandleDelete soft deletes a category; blocked while any product still
// references it.
func (h *CategoryHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
