package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer represents a customer quotes are addressed to
type Customer struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index" json:"user_id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Email       string         `gorm:"size:255;not null;index" json:"email"`
	Phone       *string        `gorm:"size:50" json:"phone,omitempty"`
	CompanyName *string        `gorm:"size:255" json:"company_name,omitempty"`
	Address     *string        `gorm:"type:text" json:"address,omitempty"`
	City        *string        `gorm:"size:100" json:"city,omitempty"`
	PostalCode  *string        `gorm:"size:20" json:"postal_code,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Tenant Tenant  `gorm:"foreignKey:TenantID" json:"-"`
	Quotes []Quote `gorm:"foreignKey:CustomerID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// DisplayCompany returns the company name or an empty string
func (c *Customer) DisplayCompany() string {
	if c.CompanyName == nil {
		return ""
	}
	return *c.CompanyName
}
