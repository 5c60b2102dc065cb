package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"catalog/internal/apperrors"
	"catalog/internal/dto"
	"catalog/internal/models"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{
		db: db,
	}
}

func (r *GORMCategoryRepository) active() *gorm.DB {
	return r.db.Where("status = ?", models.StatusActive)
}

func (r *GORMCategoryRepository) paginate(query *gorm.DB, page dto.PageRequest) ([]models.Category, int64, error) {
	var total int64
	if err := query.Model(&models.Category{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	var categories []models.Category
	err := query.Order(page.OrderClause()).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&categories).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, total, nil
}

// ListActive retrieves a page of active categories.
func (r *GORMCategoryRepository) ListActive(page dto.PageRequest) ([]models.Category, int64, error) {
	return r.paginate(r.active(), page)
}

// ListActiveAll retrieves every active category, name ascending.
func (r *GORMCategoryRepository) ListActiveAll() ([]models.Category, error) {
	var categories []models.Category
	if err := r.active().Order("name asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetByID retrieves a single category by its ID, regardless of status.
func (r *GORMCategoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category not found with id: %d", id)
		}
		return nil, fmt.Errorf("failed to get category by id %d: %w", id, err)
	}
	return &category, nil
}

// GetByName retrieves a single category by its exact name.
func (r *GORMCategoryRepository) GetByName(name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("category not found with name: %s", name)
		}
		return nil, fmt.Errorf("failed to get category by name %s: %w", name, err)
	}
	return &category, nil
}

// Search matches the term case-insensitively against name or description
// of active categories.
func (r *GORMCategoryRepository) Search(term string, page dto.PageRequest) ([]models.Category, int64, error) {
	pattern := "%" + term + "%"
	query := r.active().Where(
		"LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)",
		pattern, pattern,
	)
	return r.paginate(query, page)
}

// ListWithProducts retrieves active categories that have at least one
// associated product of any status.
func (r *GORMCategoryRepository) ListWithProducts() ([]models.Category, error) {
	var categories []models.Category
	err := r.active().
		Where("EXISTS (SELECT 1 FROM products WHERE products.category_id = categories.id)").
		Order("name asc").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories with products: %w", err)
	}
	return categories, nil
}

// ExistsByName checks the full table, inactive rows included.
func (r *GORMCategoryRepository) ExistsByName(name string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category name existence: %w", err)
	}
	return count > 0, nil
}

// ExistsByNameExcluding checks whether a different category already uses
// the name.
func (r *GORMCategoryRepository) ExistsByNameExcluding(name string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check category name existence: %w", err)
	}
	return count > 0, nil
}

// CountActive counts active categories.
func (r *GORMCategoryRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.Category{}).
		Where("status = ?", models.StatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active categories: %w", err)
	}
	return count, nil
}

// CountProducts counts every product referencing the category, regardless
// of the products' status.
func (r *GORMCategoryRepository) CountProducts(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count products for category %d: %w", categoryID, err)
	}
	return count, nil
}

// Create inserts a new category. A unique-index violation on the name is
// surfaced as a duplicate-resource error.
func (r *GORMCategoryRepository) Create(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Duplicate("category with name '%s' already exists", category.Name).Wrap(err)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Save persists all fields of an existing category, zero values included.
func (r *GORMCategoryRepository) Save(category *models.Category) error {
	if err := r.db.Save(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Duplicate("category with name '%s' already exists", category.Name).Wrap(err)
		}
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// Transaction runs fn against a repository bound to a single database
// transaction.
func (r *GORMCategoryRepository) Transaction(fn func(CategoryRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMCategoryRepository(tx))
	})
}
