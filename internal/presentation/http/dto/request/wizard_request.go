package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SetStepRequest moves the wizard to another step
type SetStepRequest struct {
	Step int `json:"step" binding:"required,min=1,max=3"`
}

// SelectCustomerRequest picks an existing customer
type SelectCustomerRequest struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
}

// CustomCustomerRequest carries customer fields typed into the wizard
type CustomCustomerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
}

// AddLineRequest adds either a catalog product or a custom line. When
// ProductID is set the other fields are ignored.
type AddLineRequest struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// UpdateLineRequest edits one field of a line. Value is the raw user input.
type UpdateLineRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// PricingRequest sets the quote-level discount and tax rate. Both values
// are applied; an omitted field is zero.
type PricingRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
}

// DetailsRequest sets the free-text quote details
type DetailsRequest struct {
	Title      string     `json:"title" binding:"max=255"`
	Notes      string     `json:"notes"`
	ValidUntil *time.Time `json:"valid_until"`
}

// SaveWizardRequest commits the draft
type SaveWizardRequest struct {
	SendImmediately bool `json:"send_immediately"`
}
