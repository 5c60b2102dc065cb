package repositories

import (
	"catalog/internal/dto"
	"catalog/internal/models"
)

// CategoryRepository defines the interface for category data access.
// CountProducts counts every product row referencing the category,
// regardless of the products' status; it backs both the productCount
// field and the delete guard.
type CategoryRepository interface {
	ListActive(page dto.PageRequest) ([]models.Category, int64, error)
	ListActiveAll() ([]models.Category, error)
	GetByID(id uint) (*models.Category, error)
	GetByName(name string) (*models.Category, error)
	Search(term string, page dto.PageRequest) ([]models.Category, int64, error)
	ListWithProducts() ([]models.Category, error)
	ExistsByName(name string) (bool, error)
	ExistsByNameExcluding(name string, id uint) (bool, error)
	CountActive() (int64, error)
	CountProducts(categoryID uint) (int64, error)
	Create(category *models.Category) error
	Save(category *models.Category) error
	Transaction(fn func(CategoryRepository) error) error
}
