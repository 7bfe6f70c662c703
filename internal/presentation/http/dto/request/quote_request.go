package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateQuoteRequest represents a quote creation request
type CreateQuoteRequest struct {
	CustomerID      uuid.UUID          `json:"customer_id" binding:"required"`
	Title           string             `json:"title" binding:"max=255"`
	Status          string             `json:"status" binding:"omitempty,oneof=draft sent"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	TaxRate         *decimal.Decimal   `json:"tax_rate"`
	Notes           string             `json:"notes"`
	ValidUntil      *time.Time         `json:"valid_until"`
	Items           []QuoteItemRequest `json:"items" binding:"required,min=1,dive"`
}

// QuoteItemRequest represents one line in a quote creation request
type QuoteItemRequest struct {
	ProductID       *uuid.UUID       `json:"product_id"`
	Description     string           `json:"description"`
	Unit            string           `json:"unit"`
	Quantity        int              `json:"quantity" binding:"required,min=1"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

// QuoteFilterRequest represents quote list parameters
type QuoteFilterRequest struct {
	Search     string `form:"search"`
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// DownloadRequest selects the download format
type DownloadRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=pdf txt"`
}
