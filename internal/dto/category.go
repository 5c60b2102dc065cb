package dto

// CategoryRequest is the inbound payload for creating or updating a
// category.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Active      *bool  `json:"active"`
}

// CategoryResponse is the outbound category representation. ProductCount
// counts every associated product regardless of its status.
type CategoryResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	ProductCount int64  `json:"productCount"`
}
