package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/domain/enum"
	"github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/internal/domain/wizard"
	infraRepo "github.com/sangkips/quotebuilder-api/internal/infrastructure/repository"
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WizardService runs quote builder sessions. Each call loads the draft,
// applies one operation and stores it back.
type WizardService struct {
	drafts      repository.DraftRepository
	productRepo repository.ProductRepository
	customers   *CustomerService
	quotes      *QuoteService
	tenants     *TenantService
	log         *zap.Logger
	now         func() time.Time
}

// NewWizardService creates a new wizard service
func NewWizardService(
	drafts repository.DraftRepository,
	productRepo repository.ProductRepository,
	customers *CustomerService,
	quotes *QuoteService,
	tenants *TenantService,
	log *zap.Logger,
) *WizardService {
	return &WizardService{
		drafts:      drafts,
		productRepo: productRepo,
		customers:   customers,
		quotes:      quotes,
		tenants:     tenants,
		log:         log,
		now:         time.Now,
	}
}

// Open starts a new draft on the customer step using the organization's
// tax rate and currency.
func (s *WizardService) Open(ctx context.Context, userID uuid.UUID) (*wizard.Draft, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}

	draft := wizard.Open(tenant.ID, userID, tenant.Settings.TaxRate.Decimal, tenant.Settings.Currency, s.now())
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Get returns the caller's draft
func (s *WizardService) Get(ctx context.Context, userID, draftID uuid.UUID) (*wizard.Draft, error) {
	return s.load(ctx, userID, draftID)
}

// Close discards the draft
func (s *WizardService) Close(ctx context.Context, userID, draftID uuid.UUID) error {
	draft, err := s.load(ctx, userID, draftID)
	if err != nil {
		return err
	}
	return s.drafts.Delete(ctx, draft.TenantID, draft.ID)
}

// SetStep moves one step forward or back. A blocked move is not an error:
// the draft comes back unchanged with moved set to false.
func (s *WizardService) SetStep(ctx context.Context, userID, draftID uuid.UUID, step wizard.Step) (*wizard.Draft, bool, error) {
	var moved bool
	draft, err := s.mutate(ctx, userID, draftID, func(d *wizard.Draft) error {
		moved = d.SetStep(step)
		return nil
	})
	return draft, moved, err
}

// SelectCustomer picks an existing customer
func (s *WizardService) SelectCustomer(ctx context.Context, userID, draftID, customerID uuid.UUID) (*wizard.Draft, error) {
	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, draftID, func(d *wizard.Draft) error {
		d.SelectExistingCustomer(customer.ID, customer.Name)
		return nil
	})
}

// SetCustomCustomer switches the draft to a customer typed in by the user.
// Incomplete fields are accepted here and only block advancing.
func (s *WizardService) SetCustomCustomer(ctx context.Context, userID, draftID uuid.UUID, fields wizard.AdhocCustomer) (*wizard.Draft, error) {
	return s.mutate(ctx, userID, draftID, func(d *wizard.Draft) error {
		d.SetAdhocCustomer(fields)
		return nil
	})
}

// AddProduct adds a catalog product, or bumps its quantity if already present
func (s *WizardService) AddProduct(ctx context.Context, userID, draftID, productID uuid.UUID) (*wizard.Draft, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	if !product.Active {
		return nil, apperror.NewFieldValidationError("product_id", "product is inactive")
	}

	return s.mutate(ctx, userID, draftID, func(d *wizard.Draft) error {
		d.AddProduct(wizard.ProductSnapshot{
			ID:          product.ID,
			Name:        product.Name,
			Description: product.DescriptionText(),
			Unit:        product.Unit,
			UnitPrice:   product.UnitPrice,
		})
		return nil
	})
}

// AddCustomLineInput describes a free-text line
type AddCustomLineInput struct {
	Description string
	Unit        string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// AddCustomLine adds a line not tied to the catalog
func (s *WizardService) AddCustomLine(ctx context.Context, userID, draftID uuid.UUID, input *AddCustomLineInput) (*wizard.Draft, error) {
	return s.mutate(ctx, userID, draftID, func(d *wizard.Draft) error {
		_, err := d.AddCustomLine(input.Description, input.Unit, input.UnitPrice, input.Quantity)
		return err
	})
}

// UpdateLine edits one field of a line and recomputes totals
func (s *WizardService) UpdateLine(ctx context.Context, userID, draftID, lineID uuid.UUID, field wizard.LineField, value string) (*wizard.Draft, error) {
	return s.mutate(ctx, userID, draftID, func(d *wizard.Draft) error {
		_, err := d.UpdateLine(lineID, field, value)
		return err
	})
}

// RemoveLine deletes a line from the draft
func (s *WizardService) RemoveLine(ctx context.Context, userID, draftID, lineID uuid.UUID) (*wizard.Draft, error) {
	return s.mutate(ctx, userID, draftID, func(d *wizard.Draft) error {
		return d.RemoveLine(lineID)
	})
}

// SetPricing sets the global discount and tax rate
func (s *WizardService) SetPricing(ctx context.Context, userID, draftID uuid.UUID, globalDiscount, taxRate decimal.Decimal) (*wizard.Draft, error) {
	return s.mutate(ctx, userID, draftID, func(d *wizard.Draft) error {
		d.SetPricing(globalDiscount, taxRate)
		return nil
	})
}

// SetDetails sets title, notes and validity shown on the review step
func (s *WizardService) SetDetails(ctx context.Context, userID, draftID uuid.UUID, title, notes string, validUntil *time.Time) (*wizard.Draft, error) {
	return s.mutate(ctx, userID, draftID, func(d *wizard.Draft) error {
		d.SetDetails(title, notes, validUntil)
		return nil
	})
}

// Save commits the draft as a quote, sent when sendImmediately is true.
// Only one save per draft may run at a time. On success the draft is
// discarded; on failure it is kept so the user can retry.
func (s *WizardService) Save(ctx context.Context, userID, draftID uuid.UUID, sendImmediately bool) (*entity.Quote, error) {
	draft, err := s.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}

	tenantID := draft.TenantID
	acquired, err := s.drafts.AcquireCommit(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, apperror.NewStateError("This quote is already being saved")
	}
	defer func() {
		if err := s.drafts.ReleaseCommit(context.WithoutCancel(ctx), tenantID, draftID); err != nil {
			s.log.Warn("failed to release draft commit guard", zap.String("draft_id", draftID.String()), zap.Error(err))
		}
	}()

	// A save that finished between the first load and the guard has
	// already discarded the draft.
	draft, err = s.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}

	if draft.Step != wizard.StepReviewAndCommit {
		return nil, apperror.NewStateError("Quote must be reviewed before it can be saved")
	}
	if len(draft.Lines) == 0 {
		return nil, apperror.NewFieldValidationError("lines", "must contain at least 1 item(s)")
	}

	customerID, err := s.resolveCustomer(ctx, userID, draft)
	if err != nil {
		return nil, err
	}

	status := enum.QuoteStatusDraft
	if sendImmediately {
		status = enum.QuoteStatusSent
	}

	taxRate := draft.TaxRate
	quote, err := s.quotes.CreateQuote(ctx, &CreateQuoteInput{
		UserID:          userID,
		CustomerID:      customerID,
		Title:           draft.Title,
		Status:          status,
		DiscountPercent: draft.GlobalDiscount,
		TaxRate:         &taxRate,
		Notes:           draft.Notes,
		ValidUntil:      draft.ValidUntil,
		Items:           draftItems(draft),
	})
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, draft.TenantID, draft.ID); err != nil {
		s.log.Warn("failed to discard committed draft", zap.String("draft_id", draft.ID.String()), zap.Error(err))
	}
	return quote, nil
}

// resolveCustomer returns the persisted customer for the draft's selection.
// An ad-hoc customer is created once; its id is stored on the draft so a
// retried save reuses it.
func (s *WizardService) resolveCustomer(ctx context.Context, userID uuid.UUID, draft *wizard.Draft) (uuid.UUID, error) {
	switch sel := draft.Customer.(type) {
	case wizard.ExistingCustomer:
		customer, err := s.customers.GetCustomer(ctx, sel.ID)
		if err != nil {
			return uuid.Nil, err
		}
		return customer.ID, nil

	case wizard.AdhocCustomer:
		if draft.ResolvedCustomerID != nil {
			return *draft.ResolvedCustomerID, nil
		}
		customer, err := s.customers.CreateCustomer(ctx, &CreateCustomerInput{
			UserID:      userID,
			Name:        sel.Name,
			Email:       sel.Email,
			Phone:       sel.Phone,
			CompanyName: sel.CompanyName,
			Address:     sel.Address,
			City:        sel.City,
			PostalCode:  sel.PostalCode,
		})
		if err != nil {
			return uuid.Nil, err
		}
		draft.ResolvedCustomerID = &customer.ID
		if err := s.drafts.Save(ctx, draft); err != nil {
			s.log.Warn("failed to record resolved customer on draft", zap.String("draft_id", draft.ID.String()), zap.Error(err))
		}
		return customer.ID, nil

	default:
		return uuid.Nil, apperror.NewFieldValidationError("customer", "is required")
	}
}

func draftItems(draft *wizard.Draft) []QuoteItemInput {
	items := make([]QuoteItemInput, len(draft.Lines))
	for i, line := range draft.Lines {
		price := line.UnitPrice
		items[i] = QuoteItemInput{
			ProductID:       line.ProductID,
			Description:     line.Description,
			Unit:            line.Unit,
			Quantity:        line.Quantity,
			UnitPrice:       &price,
			DiscountPercent: line.DiscountPercent,
		}
	}
	return items
}

func (s *WizardService) load(ctx context.Context, userID, draftID uuid.UUID) (*wizard.Draft, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	draft, err := s.drafts.Get(ctx, tenantID, draftID)
	if err != nil {
		return nil, err
	}
	if draft == nil || draft.UserID != userID {
		return nil, apperror.NewNotFoundError("Quote draft")
	}
	return draft, nil
}

func (s *WizardService) mutate(ctx context.Context, userID, draftID uuid.UUID, apply func(*wizard.Draft) error) (*wizard.Draft, error) {
	draft, err := s.load(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	if err := apply(draft); err != nil {
		return nil, draftError(err)
	}
	draft.Touch(s.now())
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func draftError(err error) error {
	var fieldErr *wizard.FieldError
	switch {
	case errors.Is(err, wizard.ErrLineNotFound):
		return apperror.NewNotFoundError("Line")
	case errors.As(err, &fieldErr):
		return apperror.NewFieldValidationError(fieldErr.Field, fieldErr.Reason)
	default:
		return err
	}
}
