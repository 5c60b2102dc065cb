package models

import "time"

// Category groups products. The back-reference to Products exists for
// lookups and counting only; deleting a category never cascades.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	Status      Status    `json:"status" gorm:"type:varchar(16);not null;default:active;index"`
	Products    []Product `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Active reports whether the category has not been soft deleted.
func (c *Category) Active() bool {
	return c.Status == StatusActive
}
