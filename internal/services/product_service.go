package services

import (
	"log"

	"catalog/internal/apperrors"
	"catalog/internal/dto"
	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/pkg/rabbitmq"
)

// ProductService handles business logic related to products: uniqueness
// invariants, category resolution, soft deletion and DTO conversion.
type ProductService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	events     *rabbitmq.Client
}

// NewProductService creates a new ProductService. The events client may
// be nil, in which case no catalog events are published.
func NewProductService(products repositories.ProductRepository, categories repositories.CategoryRepository, events *rabbitmq.Client) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		events:     events,
	}
}

// List retrieves a page of active products.
func (s *ProductService) List(page dto.PageRequest) (dto.Page[dto.ProductResponse], error) {
	products, total, err := s.products.ListActive(page)
	if err != nil {
		return dto.Page[dto.ProductResponse]{}, err
	}
	return dto.NewPage(s.toResponses(products), page, total), nil
}

// GetByID retrieves a single product by its ID. Soft-deleted products are
// still retrievable by ID.
func (s *ProductService) GetByID(id uint) (*dto.ProductResponse, error) {
	product, err := s.products.GetByID(id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(product)
	return &resp, nil
}

// GetBySKU retrieves a single product by its SKU.
func (s *ProductService) GetBySKU(sku string) (*dto.ProductResponse, error) {
	product, err := s.products.GetBySKU(sku)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(product)
	return &resp, nil
}

// Search retrieves a page of active products matching the term against
// name, description or brand.
func (s *ProductService) Search(term string, page dto.PageRequest) (dto.Page[dto.ProductResponse], error) {
	products, total, err := s.products.Search(term, page)
	if err != nil {
		return dto.Page[dto.ProductResponse]{}, err
	}
	return dto.NewPage(s.toResponses(products), page, total), nil
}

// ListByCategory retrieves a page of active products in the category.
func (s *ProductService) ListByCategory(categoryID uint, page dto.PageRequest) (dto.Page[dto.ProductResponse], error) {
	products, total, err := s.products.ListByCategory(categoryID, page)
	if err != nil {
		return dto.Page[dto.ProductResponse]{}, err
	}
	return dto.NewPage(s.toResponses(products), page, total), nil
}

// ListByPriceRange retrieves a page of active products priced within
// [minPrice, maxPrice]. Range validity is checked at the handler boundary.
func (s *ProductService) ListByPriceRange(minPrice, maxPrice float64, page dto.PageRequest) (dto.Page[dto.ProductResponse], error) {
	products, total, err := s.products.ListByPriceRange(minPrice, maxPrice, page)
	if err != nil {
		return dto.Page[dto.ProductResponse]{}, err
	}
	return dto.NewPage(s.toResponses(products), page, total), nil
}

// ListLowStock retrieves active products with quantity in (0, threshold].
func (s *ProductService) ListLowStock(threshold int) ([]dto.ProductResponse, error) {
	products, err := s.products.ListLowStock(threshold)
	if err != nil {
		return nil, err
	}
	return s.toResponses(products), nil
}

// ListOutOfStock retrieves active products with zero quantity.
func (s *ProductService) ListOutOfStock() ([]dto.ProductResponse, error) {
	products, err := s.products.ListOutOfStock()
	if err != nil {
		return nil, err
	}
	return s.toResponses(products), nil
}

// ListAll retrieves every product row, active or not. Legacy operation.
func (s *ProductService) ListAll() ([]dto.ProductResponse, error) {
	products, err := s.products.ListAll()
	if err != nil {
		return nil, err
	}
	return s.toResponses(products), nil
}

// SearchByName retrieves products whose name contains the term. Legacy
// operation, no status filter.
func (s *ProductService) SearchByName(name string) ([]dto.ProductResponse, error) {
	products, err := s.products.SearchByName(name)
	if err != nil {
		return nil, err
	}
	return s.toResponses(products), nil
}

// Count counts active products.
func (s *ProductService) Count() (int64, error) {
	return s.products.CountActive()
}

// Stats computes the legacy aggregates: row count and total inventory
// value over every product, soft-deleted rows included. Unlike every
// other listing this deliberately carries no status filter.
func (s *ProductService) Stats() (dto.ProductStats, error) {
	count, err := s.products.CountAll()
	if err != nil {
		return dto.ProductStats{}, err
	}
	total, err := s.products.TotalValue()
	if err != nil {
		return dto.ProductStats{}, err
	}
	return dto.ProductStats{ProductCount: count, TotalValue: total}, nil
}

// Create creates a new product. Fails with a duplicate-resource error if
// the SKU is already taken by any product, active or not, and with a
// not-found error if the referenced category does not exist.
func (s *ProductService) Create(req dto.ProductRequest) (*dto.ProductResponse, error) {
	category, err := s.resolveCategory(req.CategoryID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{Status: models.StatusActive}
	applyProductRequest(product, req)
	product.Category = category

	err = s.products.Transaction(func(tx repositories.ProductRepository) error {
		exists, err := tx.ExistsBySKU(req.SKU)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Duplicate("product with sku %s already exists", req.SKU)
		}
		return tx.Create(product)
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(product)
	s.publish("catalog.product.created", resp)
	return &resp, nil
}

// Update fully replaces the mutable fields of an existing product,
// category assignment included. Updating a product to its own SKU
// succeeds; colliding with a different product's SKU is a conflict.
func (s *ProductService) Update(id uint, req dto.ProductRequest) (*dto.ProductResponse, error) {
	category, err := s.resolveCategory(req.CategoryID)
	if err != nil {
		return nil, err
	}

	var updated *models.Product
	err = s.products.Transaction(func(tx repositories.ProductRepository) error {
		product, err := tx.GetByID(id)
		if err != nil {
			return err
		}

		taken, err := tx.ExistsBySKUExcluding(req.SKU, id)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Duplicate("product with sku %s already exists", req.SKU)
		}

		if err := applyProductStatus(product, req.Active); err != nil {
			return err
		}
		applyProductRequest(product, req)
		if category != nil {
			product.Category = category
		}
		if err := tx.Save(product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(updated)
	s.publish("catalog.product.updated", resp)
	return &resp, nil
}

// UpdateStock sets the quantity of an existing product, leaving every
// other field untouched.
func (s *ProductService) UpdateStock(id uint, quantity int) (*dto.ProductResponse, error) {
	var updated *models.Product
	err := s.products.Transaction(func(tx repositories.ProductRepository) error {
		product, err := tx.GetByID(id)
		if err != nil {
			return err
		}
		product.Quantity = quantity
		if err := tx.Save(product); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(updated)
	s.publish("catalog.product.stock_updated", resp)
	return &resp, nil
}

// Delete soft deletes a product. The row is retained; only the status
// flips. Deleting an already inactive product is a no-op.
func (s *ProductService) Delete(id uint) error {
	err := s.products.Transaction(func(tx repositories.ProductRepository) error {
		product, err := tx.GetByID(id)
		if err != nil {
			return err
		}
		if !product.Status.CanTransitionTo(models.StatusInactive) {
			return nil
		}
		product.Status = models.StatusInactive
		return tx.Save(product)
	})
	if err != nil {
		return err
	}

	s.publish("catalog.product.deleted", map[string]any{"id": id})
	return nil
}

func (s *ProductService) resolveCategory(categoryID *uint) (*models.Category, error) {
	if categoryID == nil {
		return nil, nil
	}
	return s.categories.GetByID(*categoryID)
}

func (s *ProductService) publish(routingKey string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(routingKey, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

func (s *ProductService) toResponse(p *models.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Active:      p.Active(),
		ImageURL:    p.ImageURL,
		Weight:      p.Weight,
		Brand:       p.Brand,
		CategoryID:  p.CategoryID,
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	return resp
}

func (s *ProductService) toResponses(products []models.Product) []dto.ProductResponse {
	responses := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, s.toResponse(&products[i]))
	}
	return responses
}

// applyProductRequest replaces the mutable fields of the entity with the
// request payload. Omitted quantity and weight reset to zero; a nil
// category reference leaves the current assignment untouched.
func applyProductRequest(product *models.Product, req dto.ProductRequest) {
	product.Name = req.Name
	product.SKU = req.SKU
	product.Description = req.Description
	product.Price = req.Price
	product.Quantity = 0
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	product.ImageURL = req.ImageURL
	product.Weight = 0
	if req.Weight != nil {
		product.Weight = *req.Weight
	}
	product.Brand = req.Brand
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if product.ID == 0 && req.Active != nil && !*req.Active {
		product.Status = models.StatusInactive
	}
}

// applyProductStatus applies a requested active flag to an existing
// product, enforcing the allowed transition set: a product may be
// deactivated but never reactivated through update.
func applyProductStatus(product *models.Product, active *bool) error {
	if active == nil {
		return nil
	}
	next := models.StatusActive
	if !*active {
		next = models.StatusInactive
	}
	if next == product.Status {
		return nil
	}
	if !product.Status.CanTransitionTo(next) {
		return apperrors.InvalidState("product %d cannot transition from %s to %s", product.ID, product.Status, next)
	}
	product.Status = next
	return nil
}
