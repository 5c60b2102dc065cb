package repositories

import (
	"catalog/internal/dto"
	"catalog/internal/models"
)

// ProductRepository defines the interface for product data access.
// List and search queries operate over active rows only; the ByID/BySKU
// lookups, the legacy ListAll/SearchByName queries and the aggregate
// helpers carry no status filter.
type ProductRepository interface {
	ListActive(page dto.PageRequest) ([]models.Product, int64, error)
	GetByID(id uint) (*models.Product, error)
	GetBySKU(sku string) (*models.Product, error)
	Search(term string, page dto.PageRequest) ([]models.Product, int64, error)
	ListByCategory(categoryID uint, page dto.PageRequest) ([]models.Product, int64, error)
	ListByPriceRange(minPrice, maxPrice float64, page dto.PageRequest) ([]models.Product, int64, error)
	ListLowStock(threshold int) ([]models.Product, error)
	ListOutOfStock() ([]models.Product, error)
	ListAll() ([]models.Product, error)
	SearchByName(name string) ([]models.Product, error)
	ExistsBySKU(sku string) (bool, error)
	ExistsBySKUExcluding(sku string, id uint) (bool, error)
	CountActive() (int64, error)
	CountAll() (int64, error)
	TotalValue() (float64, error)
	Create(product *models.Product) error
	Save(product *models.Product) error
	Transaction(fn func(ProductRepository) error) error
}
