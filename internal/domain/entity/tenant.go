package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tenant represents the organization that owns products, customers and quotes
type Tenant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	Settings  TenantSettings `gorm:"type:jsonb" json:"settings"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new tenant
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// TenantSettings holds the quoting configuration of a tenant
type TenantSettings struct {
	// Document header
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`

	// Localization
	Currency string `json:"currency,omitempty"`
	Timezone string `json:"timezone,omitempty"`

	// Quoting
	TaxRate           decimal.NullDecimal `json:"tax_rate"`
	TaxLabel          string              `json:"tax_label,omitempty"`
	QuotePrefix       string              `json:"quote_prefix,omitempty"`
	QuoteValidityDays int                 `json:"quote_validity_days,omitempty"`
}

// Scan implements the sql.Scanner interface for TenantSettings
func (ts *TenantSettings) Scan(value interface{}) error {
	if value == nil {
		*ts = TenantSettings{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TenantSettings: unsupported type")
	}

	return json.Unmarshal(bytes, ts)
}

// Value implements the driver.Valuer interface for TenantSettings
func (ts TenantSettings) Value() (driver.Value, error) {
	return json.Marshal(ts)
}

// WithDefaults fills zero-valued settings from defaults
func (ts TenantSettings) WithDefaults(defaults TenantSettings) TenantSettings {
	if ts.Currency == "" {
		ts.Currency = defaults.Currency
	}
	if ts.Timezone == "" {
		ts.Timezone = defaults.Timezone
	}
	if ts.TaxLabel == "" {
		ts.TaxLabel = defaults.TaxLabel
	}
	if ts.QuotePrefix == "" {
		ts.QuotePrefix = defaults.QuotePrefix
	}
	if ts.QuoteValidityDays <= 0 {
		ts.QuoteValidityDays = defaults.QuoteValidityDays
	}
	if !ts.TaxRate.Valid {
		ts.TaxRate = defaults.TaxRate
	}
	return ts
}

// DefaultTenantSettings returns default settings for new tenants
func DefaultTenantSettings() TenantSettings {
	return TenantSettings{
		Currency:          "SEK",
		Timezone:          "Europe/Stockholm",
		TaxRate:           decimal.NewNullDecimal(decimal.NewFromInt(25)),
		TaxLabel:          "VAT",
		QuotePrefix:       "QUO-",
		QuoteValidityDays: 30,
	}
}
