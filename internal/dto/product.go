package dto

// ProductRequest is the inbound payload for creating or replacing a
// product. Field constraints mirror the persisted schema and are checked
// at the handler boundary before any service logic runs.
type ProductRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	SKU         string   `json:"sku" validate:"required,sku"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	Active      *bool    `json:"active"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,max=500"`
	Weight      *float64 `json:"weight" validate:"omitempty,gte=0"`
	Brand       string   `json:"brand" validate:"omitempty,max=100"`
	CategoryID  *uint    `json:"categoryId"`
}

// ProductResponse is the outbound product representation. CategoryName is
// denormalized from the joined category, when one is assigned.
type ProductResponse struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	Active       bool    `json:"active"`
	ImageURL     string  `json:"imageUrl"`
	Weight       float64 `json:"weight"`
	Brand        string  `json:"brand"`
	CategoryID   *uint   `json:"categoryId,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
}

// ProductStats is the legacy aggregate payload: a raw count and the total
// inventory value (price x quantity) over every product row.
type ProductStats struct {
	ProductCount int64   `json:"productCount"`
	TotalValue   float64 `json:"totalValue"`
}
