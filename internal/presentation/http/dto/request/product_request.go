package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	CategoryID  *uuid.UUID      `json:"category_id"`
	Name        string          `json:"name" binding:"required,max=255"`
	Description *string         `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit" binding:"omitempty,max=50"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	CategoryID  *uuid.UUID       `json:"category_id"`
	Name        *string          `json:"name" binding:"omitempty,max=255"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Unit        *string          `json:"unit" binding:"omitempty,max=50"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search          string `form:"search"`
	CategoryID      string `form:"category_id"`
	IncludeInactive bool   `form:"include_inactive"`
	SortBy          string `form:"sort_by"`
	SortOrder       string `form:"sort_order"`
	Page            int    `form:"page"`
	PerPage         int    `form:"per_page"`
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}
