package models

import "time"

// Product represents a catalog product. A product optionally belongs to a
// category; the product side owns the foreign key.
type Product struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null;index"`
	SKU         string    `json:"sku" gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:varchar(1000)"`
	Price       float64   `json:"price" gorm:"not null"`
	Quantity    int       `json:"quantity" gorm:"not null;default:0"`
	Status      Status    `json:"status" gorm:"type:varchar(16);not null;default:active;index"`
	ImageURL    string    `json:"imageUrl" gorm:"type:varchar(500)"`
	Weight      float64   `json:"weight"`
	Brand       string    `json:"brand" gorm:"type:varchar(100)"`
	CategoryID  *uint     `json:"categoryId" gorm:"index"`
	Category    *Category `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Active reports whether the product has not been soft deleted.
func (p *Product) Active() bool {
	return p.Status == StatusActive
}

// InStock reports whether any quantity is available.
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

// LowStock reports whether the quantity is positive but at or below the
// threshold. Out-of-stock products are not considered low stock.
func (p *Product) LowStock(threshold int) bool {
	return p.Quantity > 0 && p.Quantity <= threshold
}
