package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"catalog/internal/apperrors"
	"catalog/internal/dto"
	"catalog/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

func (r *GORMProductRepository) active() *gorm.DB {
	return r.db.Where("status = ?", models.StatusActive)
}

func (r *GORMProductRepository) paginate(query *gorm.DB, page dto.PageRequest) ([]models.Product, int64, error) {
	var total int64
	if err := query.Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := query.Preload("Category").
		Order(page.OrderClause()).
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// ListActive retrieves a page of active products.
func (r *GORMProductRepository) ListActive(page dto.PageRequest) ([]models.Product, int64, error) {
	return r.paginate(r.active(), page)
}

// GetByID retrieves a single product by its ID, regardless of status.
func (r *GORMProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found with id: %d", id)
		}
		return nil, fmt.Errorf("failed to get product by id %d: %w", id, err)
	}
	return &product, nil
}

// GetBySKU retrieves a single product by its SKU, regardless of status.
func (r *GORMProductRepository) GetBySKU(sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, "sku = ?", sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product not found with sku: %s", sku)
		}
		return nil, fmt.Errorf("failed to get product by sku %s: %w", sku, err)
	}
	return &product, nil
}

// Search matches the term case-insensitively against name, description or
// brand of active products.
func (r *GORMProductRepository) Search(term string, page dto.PageRequest) ([]models.Product, int64, error) {
	pattern := "%" + term + "%"
	query := r.active().Where(
		"LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?)",
		pattern, pattern, pattern,
	)
	return r.paginate(query, page)
}

// ListByCategory retrieves a page of active products in the given category.
func (r *GORMProductRepository) ListByCategory(categoryID uint, page dto.PageRequest) ([]models.Product, int64, error) {
	return r.paginate(r.active().Where("category_id = ?", categoryID), page)
}

// ListByPriceRange retrieves a page of active products priced within
// [minPrice, maxPrice].
func (r *GORMProductRepository) ListByPriceRange(minPrice, maxPrice float64, page dto.PageRequest) ([]models.Product, int64, error) {
	return r.paginate(r.active().Where("price BETWEEN ? AND ?", minPrice, maxPrice), page)
}

// ListLowStock retrieves active products with quantity in (0, threshold].
func (r *GORMProductRepository) ListLowStock(threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.active().
		Where("quantity > 0 AND quantity <= ?", threshold).
		Preload("Category").
		Order("quantity asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// ListOutOfStock retrieves active products with zero quantity.
func (r *GORMProductRepository) ListOutOfStock() ([]models.Product, error) {
	var products []models.Product
	err := r.active().
		Where("quantity = 0").
		Preload("Category").
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list out of stock products: %w", err)
	}
	return products, nil
}

// ListAll retrieves every product row, active or not. Legacy query.
func (r *GORMProductRepository) ListAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Preload("Category").Order("id asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list all products: %w", err)
	}
	return products, nil
}

// SearchByName matches the term case-insensitively against the name only,
// over every row. Legacy query.
func (r *GORMProductRepository) SearchByName(name string) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Category").
		Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%").
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products by name: %w", err)
	}
	return products, nil
}

// ExistsBySKU checks the full table, inactive rows included.
func (r *GORMProductRepository) ExistsBySKU(sku string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Where("sku = ?", sku).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check sku existence: %w", err)
	}
	return count > 0, nil
}

// ExistsBySKUExcluding checks whether a different product already uses
// the SKU.
func (r *GORMProductRepository) ExistsBySKUExcluding(sku string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("sku = ? AND id <> ?", sku, id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check sku existence: %w", err)
	}
	return count > 0, nil
}

// CountActive counts active products.
func (r *GORMProductRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).
		Where("status = ?", models.StatusActive).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active products: %w", err)
	}
	return count, nil
}

// CountAll counts every product row. Legacy aggregate.
func (r *GORMProductRepository) CountAll() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// TotalValue sums price * quantity over every product row, inactive rows
// included. Legacy aggregate; intentionally not filtered by status.
func (r *GORMProductRepository) TotalValue() (float64, error) {
	var total float64
	err := r.db.Model(&models.Product{}).
		Select("COALESCE(SUM(price * quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute total inventory value: %w", err)
	}
	return total, nil
}

// Create inserts a new product. A unique-index violation on the SKU is
// surfaced as a duplicate-resource error.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Duplicate("product with sku %s already exists", product.SKU).Wrap(err)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Save persists all fields of an existing product, zero values included.
func (r *GORMProductRepository) Save(product *models.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Duplicate("product with sku %s already exists", product.SKU).Wrap(err)
		}
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// Transaction runs fn against a repository bound to a single database
// transaction, so existence checks and writes form one atomic unit.
func (r *GORMProductRepository) Transaction(fn func(ProductRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMProductRepository(tx))
	})
}
