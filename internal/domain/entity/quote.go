package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quote represents a priced proposal sent to a customer
type Quote struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	TenantID        uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_quotes_tenant_number" json:"tenant_id"`
	UserID          uuid.UUID        `gorm:"type:uuid;index" json:"user_id"`
	CustomerID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"customer_id"`
	QuoteNumber     string           `gorm:"size:50;not null;uniqueIndex:idx_quotes_tenant_number" json:"quote_number"`
	Title           string           `gorm:"size:255" json:"title"`
	Status          enum.QuoteStatus `gorm:"not null;default:0;index" json:"status"`
	Currency        string           `gorm:"size:3" json:"currency"`
	Subtotal        decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"subtotal"`
	DiscountPercent decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	DiscountAmount  decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"discount_amount"`
	TaxRate         decimal.Decimal  `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount       decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"tax_amount"`
	Total           decimal.Decimal  `gorm:"type:decimal(15,2);not null;default:0" json:"total"`
	Notes           *string          `gorm:"type:text" json:"notes,omitempty"`
	ValidUntil      *time.Time       `gorm:"index" json:"valid_until,omitempty"`
	SentAt          *time.Time       `json:"sent_at,omitempty"`
	ViewedAt        *time.Time       `json:"viewed_at,omitempty"`
	AcceptedAt      *time.Time       `json:"accepted_at,omitempty"`
	RejectedAt      *time.Time       `json:"rejected_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	// DisplayStatus is Status with expiry applied at read time
	DisplayStatus enum.QuoteStatus `gorm:"-" json:"display_status"`

	// Relationships
	Tenant   Tenant          `gorm:"foreignKey:TenantID" json:"-"`
	Customer *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []QuoteLineItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new quote
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Quote model
func (Quote) TableName() string {
	return "quotes"
}

// IsExpired reports whether the quote lapsed before it was answered
func (q *Quote) IsExpired(now time.Time) bool {
	return q.Status.CanExpire() && q.ValidUntil != nil && q.ValidUntil.Before(now)
}

// EffectiveStatus returns the stored status, or expired when the quote lapsed
func (q *Quote) EffectiveStatus(now time.Time) enum.QuoteStatus {
	if q.IsExpired(now) {
		return enum.QuoteStatusExpired
	}
	return q.Status
}

// QuoteLineItem is one priced row of a quote. Description and unit price are
// copied from the product when the line is added.
type QuoteLineItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	QuoteID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"quote_id"`
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProductID       *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Unit            string          `gorm:"size:50" json:"unit"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"unit_price"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percent"`
	LineTotal       decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"line_total"`
	SortOrder       int             `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new line item
func (li *QuoteLineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the QuoteLineItem model
func (QuoteLineItem) TableName() string {
	return "quote_line_items"
}

// QuoteSequence holds the last quote number handed out for a tenant
type QuoteSequence struct {
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"tenant_id"`
	LastValue int64     `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the QuoteSequence model
func (QuoteSequence) TableName() string {
	return "quote_sequences"
}
