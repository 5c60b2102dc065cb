package handlers

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"catalog/internal/apperrors"
	"catalog/internal/dto"
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// newValidator builds the request validator with the custom sku rule
// (uppercase letters, digits and hyphens only).
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("sku", func(fl validator.FieldLevel) bool {
		return skuPattern.MatchString(fl.Field().String())
	})
	return v
}

// validationMessages flattens validator errors into a field -> message map.
func validationMessages(err error) map[string]string {
	messages := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return messages
	}
	for _, e := range verrs {
		field := strings.ToLower(e.Field()[:1]) + e.Field()[1:]
		switch e.Tag() {
		case "required":
			messages[field] = fmt.Sprintf("%s is required", field)
		case "min":
			messages[field] = fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		case "max":
			messages[field] = fmt.Sprintf("%s cannot exceed %s characters", field, e.Param())
		case "gt":
			messages[field] = fmt.Sprintf("%s must be greater than %s", field, e.Param())
		case "gte":
			messages[field] = fmt.Sprintf("%s cannot be negative", field)
		case "email":
			messages[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "sku":
			messages[field] = "sku must contain only uppercase letters, numbers and hyphens"
		default:
			messages[field] = fmt.Sprintf("%s failed validation on '%s'", field, e.Tag())
		}
	}
	return messages
}

func statusOf(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeDuplicate, apperrors.CodeInvalidState:
		return fiber.StatusConflict
	case apperrors.CodeInvalidArgument, apperrors.CodeValidation:
		return fiber.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError maps a domain error to its HTTP status and error envelope.
// Errors outside the taxonomy are logged and hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	code := apperrors.CodeOf(err)
	message := err.Error()
	if code == apperrors.CodeInternal {
		log.Printf("Internal error handling %s %s: %v", c.Method(), c.Path(), err)
		message = "an unexpected error occurred"
	}
	return c.Status(statusOf(code)).JSON(fiber.Map{
		"code":    code,
		"message": message,
	})
}

// respondValidation returns the structured validation failure envelope
// with the per-field messages.
func respondValidation(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":        apperrors.CodeValidation,
		"message":     "request validation failed",
		"fieldErrors": validationMessages(err),
	})
}

func respondBadBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"code":    apperrors.CodeInvalidArgument,
		"message": "invalid request body",
		"error":   err.Error(),
	})
}

// parsePageRequest reads page/size/sort query parameters. The sort value
// uses "field" or "field,desc" form and must name a whitelisted field.
func parsePageRequest(c *fiber.Ctx, defaultSort string, sortable map[string]string) (dto.PageRequest, error) {
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", dto.DefaultPageSize)

	sortParam := c.Query("sort", defaultSort)
	field, direction, _ := strings.Cut(sortParam, ",")
	column, ok := sortable[field]
	if !ok {
		return dto.PageRequest{}, apperrors.InvalidArgument("unsupported sort field: %s", field)
	}
	desc := strings.EqualFold(strings.TrimSpace(direction), "desc")

	return dto.NewPageRequest(page, size, column, desc), nil
}

// parseID reads a positive numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidArgument("invalid %s: %s", name, c.Params(name))
	}
	return uint(id), nil
}
