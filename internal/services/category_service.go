package services

import (
	"log"

	"catalog/internal/apperrors"
	"catalog/internal/dto"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/pkg/rabbitmq"
)

// CategoryService handles business logic related to categories: name
// uniqueness, the non-empty-before-delete guard and DTO conversion.
type CategoryService struct {
	categories repositories.CategoryRepository
	events     *rabbitmq.Client
}

// NewCategoryService creates a new CategoryService. The events client may
// be nil, in which case no catalog events are published.
func NewCategoryService(categories repositories.CategoryRepository, events *rabbitmq.Client) *CategoryService {
	return &CategoryService{
		categories: categories,
		events:     events,
	}
}

// List retrieves a page of active categories.
func (s *CategoryService) List(page dto.PageRequest) (dto.Page[dto.CategoryResponse], error) {
	categories, total, err := s.categories.ListActive(page)
	if err != nil {
		return dto.Page[dto.CategoryResponse]{}, err
	}
	responses, err := s.toResponses(categories)
	if err != nil {
		return dto.Page[dto.CategoryResponse]{}, err
	}
	return dto.NewPage(responses, page, total), nil
}

// ListAll retrieves every active category as a flat list.
func (s *CategoryService) ListAll() ([]dto.CategoryResponse, error) {
	categories, err := s.categories.ListActiveAll()
	if err != nil {
		return nil, err
	}
	return s.toResponses(categories)
}

// GetByID retrieves a single category by its ID. Soft-deleted categories
// are still retrievable by ID.
func (s *CategoryService) GetByID(id uint) (*dto.CategoryResponse, error) {
	category, err := s.categories.GetByID(id)
	if err != nil {
		return nil, err
	}
	return s.toResponsePtr(category)
}

// GetByName retrieves a single category by its exact name.
func (s *CategoryService) GetByName(name string) (*dto.CategoryResponse, error) {
	category, err := s.categories.GetByName(name)
	if err != nil {
		return nil, err
	}
	return s.toResponsePtr(category)
}

// Search retrieves a page of active categories matching the term against
// name or description.
func (s *CategoryService) Search(term string, page dto.PageRequest) (dto.Page[dto.CategoryResponse], error) {
	categories, total, err := s.categories.Search(term, page)
	if err != nil {
		return dto.Page[dto.CategoryResponse]{}, err
	}
	responses, err := s.toResponses(categories)
	if err != nil {
		return dto.Page[dto.CategoryResponse]{}, err
	}
	return dto.NewPage(responses, page, total), nil
}

// ListWithProducts retrieves active categories holding at least one
// product of any status.
func (s *CategoryService) ListWithProducts() ([]dto.CategoryResponse, error) {
	categories, err := s.categories.ListWithProducts()
	if err != nil {
		return nil, err
	}
	return s.toResponses(categories)
}

// Count counts active categories.
func (s *CategoryService) Count() (int64, error) {
	return s.categories.CountActive()
}

// Create creates a new category. The name must be unused by any category,
// active or not.
func (s *CategoryService) Create(req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.StatusActive,
	}
	if req.Active != nil && !*req.Active {
		category.Status = models.StatusInactive
	}

	err := s.categories.Transaction(func(tx repositories.CategoryRepository) error {
		exists, err := tx.ExistsByName(req.Name)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Duplicate("category with name '%s' already exists", req.Name)
		}
		return tx.Create(category)
	})
	if err != nil {
		return nil, err
	}

	resp := dto.CategoryResponse{ID: category.ID, Name: category.Name, Description: category.Description, Active: category.Active()}
	s.publish("catalog.category.created", resp)
	return &resp, nil
}

// Update renames or re-describes an existing category. Colliding with a
// different category's name is a conflict. The active flag may only move
// along the allowed transition set (no reactivation).
func (s *CategoryService) Update(id uint, req dto.CategoryRequest) (*dto.CategoryResponse, error) {
	var updated *models.Category
	err := s.categories.Transaction(func(tx repositories.CategoryRepository) error {
		category, err := tx.GetByID(id)
		if err != nil {
			return err
		}

		taken, err := tx.ExistsByNameExcluding(req.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Duplicate("category with name '%s' already exists", req.Name)
		}

		if err := applyCategoryStatus(category, req.Active); err != nil {
			return err
		}
		category.Name = req.Name
		category.Description = req.Description
		if err := tx.Save(category); err != nil {
			return err
		}
		updated = category
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.toResponsePtr(updated)
	if err != nil {
		return nil, err
	}
	s.publish("catalog.category.updated", *resp)
	return resp, nil
}

// Delete soft deletes a category. A category still referenced by any
// product, active or not, cannot be deleted.
func (s *CategoryService) Delete(id uint) error {
	err := s.categories.Transaction(func(tx repositories.CategoryRepository) error {
		category, err := tx.GetByID(id)
		if err != nil {
			return err
		}

		productCount, err := tx.CountProducts(id)
		if err != nil {
			return err
		}
		if productCount > 0 {
			return apperrors.InvalidState("cannot delete category %d: %d products still assigned", id, productCount)
		}

		if !category.Status.CanTransitionTo(models.StatusInactive) {
			return nil
		}
		category.Status = models.StatusInactive
		return tx.Save(category)
	})
	if err != nil {
		return err
	}

	s.publish("catalog.category.deleted", map[string]any{"id": id})
	return nil
}

func (s *CategoryService) publish(routingKey string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(routingKey, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

func (s *CategoryService) toResponsePtr(c *models.Category) (*dto.CategoryResponse, error) {
	productCount, err := s.categories.CountProducts(c.ID)
	if err != nil {
		return nil, err
	}
	return &dto.CategoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Active:       c.Active(),
		ProductCount: productCount,
	}, nil
}

func (s *CategoryService) toResponses(categories []models.Category) ([]dto.CategoryResponse, error) {
	responses := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		resp, err := s.toResponsePtr(&categories[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, *resp)
	}
	return responses, nil
}

// applyCategoryStatus applies a requested active flag to an existing
// category, enforcing the allowed transition set.
func applyCategoryStatus(category *models.Category, active *bool) error {
	if active == nil {
		return nil
	}
	next := models.StatusActive
	if !*active {
		next = models.StatusInactive
	}
	if next == category.Status {
		return nil
	}
	if !category.Status.CanTransitionTo(next) {
		return apperrors.InvalidState("category %d cannot transition from %s to %s", category.ID, category.Status, next)
	}
	category.Status = next
	return nil
}
