// Package wizard models the three-step quote builder as a state machine over
// an in-progress Draft. It holds no I/O: services load a Draft, apply one
// operation and store it back.
package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/quotebuilder-api/internal/domain/pricing"
)

// Step is a wizard page.
type Step int

const (
	StepSelectCustomer  Step = 1
	StepSelectItems     Step = 2
	StepReviewAndCommit Step = 3
)

func (s Step) String() string {
	switch s {
	case StepSelectCustomer:
		return "select_customer"
	case StepSelectItems:
		return "select_items"
	case StepReviewAndCommit:
		return "review_and_commit"
	default:
		return "unknown"
	}
}

// IsValid reports whether s is one of the three wizard steps.
func (s Step) IsValid() bool {
	return s >= StepSelectCustomer && s <= StepReviewAndCommit
}

// advanceGuards maps each step to the condition for moving to the next one.
// A step with no entry cannot advance.
var advanceGuards = map[Step]func(*Draft) bool{
	StepSelectCustomer: (*Draft).hasCustomer,
	StepSelectItems:    (*Draft).hasLines,
}

// LineField names an editable column of a draft line.
type LineField string

const (
	FieldQuantity    LineField = "quantity"
	FieldDiscount    LineField = "discount_percent"
	FieldUnitPrice   LineField = "unit_price"
	FieldDescription LineField = "description"
	FieldUnit        LineField = "unit"
)

// ErrLineNotFound is returned when an edit names a line the draft does not have.
var ErrLineNotFound = errors.New("line not found")

// FieldError reports an edit that could not be applied to a field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ProductSnapshot is the catalog data copied into a line when a product is added.
type ProductSnapshot struct {
	ID          uuid.UUID
	Name        string
	Description string
	Unit        string
	UnitPrice   decimal.Decimal
}

// Line is one row of the draft.
type Line struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       *uuid.UUID      `json:"product_id,omitempty"`
	Description     string          `json:"description"`
	Unit            string          `json:"unit"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Quantity        int             `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Total           decimal.Decimal `json:"total"`
}

// Draft is the transient state of one quote being built.
type Draft struct {
	ID       uuid.UUID         `json:"id"`
	TenantID uuid.UUID         `json:"tenant_id"`
	UserID   uuid.UUID         `json:"user_id"`
	Step     Step              `json:"step"`
	Customer CustomerSelection `json:"customer"`

	// ResolvedCustomerID is set once an ad-hoc customer has been created so a
	// retried commit does not create it twice.
	ResolvedCustomerID *uuid.UUID `json:"resolved_customer_id,omitempty"`

	Lines          []Line          `json:"lines"`
	GlobalDiscount decimal.Decimal `json:"global_discount_percent"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	Currency       string          `json:"currency"`
	Title          string          `json:"title"`
	Notes          string          `json:"notes"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	Totals         pricing.Totals  `json:"totals"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Open returns an empty draft on the first step.
func Open(tenantID, userID uuid.UUID, taxRate decimal.Decimal, currency string, now time.Time) *Draft {
	d := &Draft{
		ID:             uuid.New(),
		TenantID:       tenantID,
		UserID:         userID,
		Step:           StepSelectCustomer,
		Lines:          []Line{},
		GlobalDiscount: decimal.Zero,
		TaxRate:        pricing.ClampRate(taxRate),
		Currency:       currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	d.recompute()
	return d
}

func (d *Draft) hasCustomer() bool {
	return d.Customer != nil && d.Customer.Complete()
}

func (d *Draft) hasLines() bool {
	return len(d.Lines) > 0
}

// CanAdvance reports whether the current step's exit condition holds.
func (d *Draft) CanAdvance() bool {
	guard, ok := advanceGuards[d.Step]
	return ok && guard(d)
}

// SetStep moves one step forward or back. Forward moves require CanAdvance.
// It returns false, leaving the step unchanged, when the move is not allowed.
func (d *Draft) SetStep(target Step) bool {
	if !target.IsValid() {
		return false
	}
	switch target - d.Step {
	case 0:
		return true
	case 1:
		if !d.CanAdvance() {
			return false
		}
	case -1:
	default:
		return false
	}
	d.Step = target
	return true
}

// Advance moves to the next step when allowed.
func (d *Draft) Advance() bool { return d.SetStep(d.Step + 1) }

// Back moves to the previous step. It is a no-op on the first step.
func (d *Draft) Back() bool { return d.SetStep(d.Step - 1) }

// SelectExistingCustomer replaces the selection with a catalog customer.
func (d *Draft) SelectExistingCustomer(id uuid.UUID, name string) {
	d.Customer = ExistingCustomer{ID: id, Name: name}
	d.ResolvedCustomerID = nil
}

// SetAdhocCustomer replaces the selection with typed-in customer fields.
func (d *Draft) SetAdhocCustomer(c AdhocCustomer) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	d.Customer = c
	d.ResolvedCustomerID = nil
}

// ClearCustomer removes the selection.
func (d *Draft) ClearCustomer() {
	d.Customer = nil
	d.ResolvedCustomerID = nil
}

// AddProduct appends the product as a new line, or bumps the quantity of the
// line that already carries it.
func (d *Draft) AddProduct(p ProductSnapshot) Line {
	for i := range d.Lines {
		if d.Lines[i].ProductID != nil && *d.Lines[i].ProductID == p.ID {
			d.Lines[i].Quantity++
			d.recompute()
			return d.Lines[i]
		}
	}

	productID := p.ID
	description := p.Name
	if p.Description != "" {
		description = p.Name + " - " + p.Description
	}
	d.Lines = append(d.Lines, Line{
		ID:              uuid.New(),
		ProductID:       &productID,
		Description:     description,
		Unit:            p.Unit,
		UnitPrice:       pricing.ClampPrice(p.UnitPrice),
		Quantity:        1,
		DiscountPercent: decimal.Zero,
	})
	d.recompute()
	return d.Lines[len(d.Lines)-1]
}

// AddCustomLine appends a free-text line not tied to a catalog product.
func (d *Draft) AddCustomLine(description, unit string, unitPrice decimal.Decimal, quantity int) (Line, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Line{}, &FieldError{Field: string(FieldDescription), Reason: "is required"}
	}
	d.Lines = append(d.Lines, Line{
		ID:              uuid.New(),
		Description:     description,
		Unit:            unit,
		UnitPrice:       pricing.ClampPrice(unitPrice),
		Quantity:        pricing.ClampQuantity(quantity),
		DiscountPercent: decimal.Zero,
	})
	d.recompute()
	return d.Lines[len(d.Lines)-1], nil
}

func (d *Draft) lineIndex(id uuid.UUID) int {
	for i := range d.Lines {
		if d.Lines[i].ID == id {
			return i
		}
	}
	return -1
}

// UpdateLine sets one field of a line from its textual form. Numeric values
// are clamped into range rather than rejected.
func (d *Draft) UpdateLine(lineID uuid.UUID, field LineField, value string) (Line, error) {
	idx := d.lineIndex(lineID)
	if idx < 0 {
		return Line{}, ErrLineNotFound
	}
	line := &d.Lines[idx]
	value = strings.TrimSpace(value)

	switch field {
	case FieldQuantity:
		q, err := strconv.Atoi(value)
		if err != nil {
			return Line{}, &FieldError{Field: string(field), Reason: "must be a whole number"}
		}
		line.Quantity = pricing.ClampQuantity(q)
	case FieldDiscount:
		p, err := decimal.NewFromString(value)
		if err != nil {
			return Line{}, &FieldError{Field: string(field), Reason: "must be a number"}
		}
		line.DiscountPercent = pricing.ClampPercent(p)
	case FieldUnitPrice:
		p, err := decimal.NewFromString(value)
		if err != nil {
			return Line{}, &FieldError{Field: string(field), Reason: "must be a number"}
		}
		line.UnitPrice = pricing.ClampPrice(p)
	case FieldDescription:
		if value == "" {
			return Line{}, &FieldError{Field: string(field), Reason: "is required"}
		}
		line.Description = value
	case FieldUnit:
		line.Unit = value
	default:
		return Line{}, &FieldError{Field: string(field), Reason: "is not editable"}
	}

	d.recompute()
	return d.Lines[idx], nil
}

// RemoveLine deletes a line.
func (d *Draft) RemoveLine(lineID uuid.UUID) error {
	idx := d.lineIndex(lineID)
	if idx < 0 {
		return ErrLineNotFound
	}
	d.Lines = append(d.Lines[:idx], d.Lines[idx+1:]...)
	d.recompute()
	return nil
}

// SetPricing sets the quote-level discount and tax rate.
func (d *Draft) SetPricing(globalDiscount, taxRate decimal.Decimal) {
	d.GlobalDiscount = pricing.ClampPercent(globalDiscount)
	d.TaxRate = pricing.ClampRate(taxRate)
	d.recompute()
}

// SetDetails sets the descriptive fields shown on the review step.
func (d *Draft) SetDetails(title, notes string, validUntil *time.Time) {
	d.Title = strings.TrimSpace(title)
	d.Notes = strings.TrimSpace(notes)
	d.ValidUntil = validUntil
}

// PricingLines converts the draft lines to calculator input.
func (d *Draft) PricingLines() []pricing.Line {
	lines := make([]pricing.Line, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity, DiscountPercent: l.DiscountPercent}
	}
	return lines
}

// recompute refreshes every derived amount. Called after each mutation.
func (d *Draft) recompute() {
	for i := range d.Lines {
		l := &d.Lines[i]
		l.Total = pricing.ComputeLineTotal(l.UnitPrice, l.Quantity, l.DiscountPercent)
	}
	d.Totals = pricing.ComputeQuoteTotals(d.PricingLines(), d.GlobalDiscount, d.TaxRate)
}

// Touch records a modification time.
func (d *Draft) Touch(now time.Time) {
	d.UpdatedAt = now
}

type draftAlias Draft

// MarshalJSON tags the customer selection with its kind and adds the
// derived navigation state.
func (d Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		draftAlias
		Customer   *selectionEnvelope `json:"customer"`
		StepName   string             `json:"step_name"`
		CanAdvance bool               `json:"can_advance"`
	}{
		draftAlias: draftAlias(d),
		Customer:   encodeSelection(d.Customer),
		StepName:   d.Step.String(),
		CanAdvance: d.CanAdvance(),
	})
}

func (d *Draft) UnmarshalJSON(data []byte) error {
	aux := struct {
		*draftAlias
		Customer *selectionEnvelope `json:"customer"`
	}{draftAlias: (*draftAlias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	sel, err := decodeSelection(aux.Customer)
	if err != nil {
		return err
	}
	d.Customer = sel
	return nil
}
