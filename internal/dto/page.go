package dto

import "fmt"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest describes the slice of a result set a caller asked for.
// SortField must already be validated against a whitelist before it
// reaches a repository; it is interpolated into an ORDER BY clause.
type PageRequest struct {
	Page      int
	Size      int
	SortField string
	SortDesc  bool
}

// NewPageRequest clamps page and size into their valid ranges.
func NewPageRequest(page, size int, sortField string, sortDesc bool) PageRequest {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size, SortField: sortField, SortDesc: sortDesc}
}

func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

func (p PageRequest) Limit() int {
	return p.Size
}

// OrderClause renders the ORDER BY expression for this request.
func (p PageRequest) OrderClause() string {
	dir := "asc"
	if p.SortDesc {
		dir = "desc"
	}
	return fmt.Sprintf("%s %s", p.SortField, dir)
}

// Page is the pagination envelope returned by list endpoints.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage assembles a page envelope. Content is never nil so the JSON
// encoding is always an array.
func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}
