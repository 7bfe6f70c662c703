package repository

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Defaults substituted for missing optional catalog fields on read.
const (
	DefaultCategoryName = "Uncategorized"
	DefaultUnit         = "piece"
	DefaultCustomerName = "Unnamed customer"
)

// productRow is the loose scan target for product reads. Every column that
// might be NULL in old data is a pointer so one bad row never fails a page.
type productRow struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	UserID       *uuid.UUID
	CategoryID   *uuid.UUID
	Name         *string
	Slug         *string
	Description  *string
	UnitPrice    decimal.NullDecimal
	Unit         *string
	Active       *bool
	CategoryName *string
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
}

const productColumns = "products.id, products.tenant_id, products.user_id, products.category_id, " +
	"products.name, products.slug, products.description, products.unit_price, products.unit, " +
	"products.active, products.created_at, products.updated_at, categories.name AS category_name"

func (r productRow) toEntity() entity.Product {
	p := entity.Product{
		ID:           r.ID,
		TenantID:     r.TenantID,
		CategoryID:   r.CategoryID,
		Name:         deref(r.Name),
		Slug:         deref(r.Slug),
		Description:  r.Description,
		UnitPrice:    r.UnitPrice.Decimal,
		Unit:         deref(r.Unit),
		Active:       r.Active == nil || *r.Active,
		CategoryName: deref(r.CategoryName),
	}
	if r.UserID != nil {
		p.UserID = *r.UserID
	}
	if r.CreatedAt != nil {
		p.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		p.UpdatedAt = *r.UpdatedAt
	}
	applyProductDefaults(&p)
	return p
}

// applyProductDefaults fills category, unit and description so callers never
// see blanks. A NULL price reads as zero.
func applyProductDefaults(p *entity.Product) {
	if p.CategoryName == "" && p.Category != nil {
		p.CategoryName = p.Category.Name
	}
	if strings.TrimSpace(p.CategoryName) == "" {
		p.CategoryName = DefaultCategoryName
	}
	if strings.TrimSpace(p.Unit) == "" {
		p.Unit = DefaultUnit
	}
	if p.Description == nil {
		empty := ""
		p.Description = &empty
	}
	if p.UnitPrice.IsNegative() {
		p.UnitPrice = decimal.Zero
	}
}

// customerRow mirrors productRow for customer reads
type customerRow struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	UserID      *uuid.UUID
	Name        *string
	Email       *string
	Phone       *string
	CompanyName *string
	Address     *string
	City        *string
	PostalCode  *string
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
}

func (r customerRow) toEntity() entity.Customer {
	c := entity.Customer{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Name:        deref(r.Name),
		Email:       deref(r.Email),
		Phone:       r.Phone,
		CompanyName: r.CompanyName,
		Address:     r.Address,
		City:        r.City,
		PostalCode:  r.PostalCode,
	}
	if r.UserID != nil {
		c.UserID = *r.UserID
	}
	if r.CreatedAt != nil {
		c.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		c.UpdatedAt = *r.UpdatedAt
	}
	applyCustomerDefaults(&c)
	return c
}

// applyCustomerDefaults gives nameless customers a readable label
func applyCustomerDefaults(c *entity.Customer) {
	if strings.TrimSpace(c.Name) == "" {
		if c.CompanyName != nil && strings.TrimSpace(*c.CompanyName) != "" {
			c.Name = *c.CompanyName
		} else {
			c.Name = DefaultCustomerName
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
