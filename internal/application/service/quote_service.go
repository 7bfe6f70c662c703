package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/domain/enum"
	"github.com/sangkips/quotebuilder-api/internal/domain/pricing"
	"github.com/sangkips/quotebuilder-api/internal/domain/repository"
	infraRepo "github.com/sangkips/quotebuilder-api/internal/infrastructure/repository"
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
	"github.com/sangkips/quotebuilder-api/pkg/validator"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteService owns quote creation and the status lifecycle
type QuoteService struct {
	quoteRepo    repository.QuoteRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	tenants      *TenantService
	validate     *validator.Validator
	log          *zap.Logger
	now          func() time.Time
}

// NewQuoteService creates a new quote service
func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	tenants *TenantService,
	validate *validator.Validator,
	log *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		tenants:      tenants,
		validate:     validate,
		log:          log,
		now:          time.Now,
	}
}

// CreateQuoteInput represents the input for creating a quote
type CreateQuoteInput struct {
	UserID          uuid.UUID        `json:"-"`
	CustomerID      uuid.UUID        `json:"customer_id"`
	Title           string           `json:"title" validate:"max=255"`
	Status          enum.QuoteStatus `json:"status"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
	// TaxRate overrides the organization's rate when set
	TaxRate    *decimal.Decimal `json:"tax_rate"`
	Notes      string           `json:"notes"`
	ValidUntil *time.Time       `json:"valid_until"`
	Items      []QuoteItemInput `json:"items" validate:"min=1,dive"`
}

// QuoteItemInput is one line of a new quote. Lines referencing a product
// take any missing description, unit or price from the catalog.
type QuoteItemInput struct {
	ProductID       *uuid.UUID       `json:"product_id"`
	Description     string           `json:"description" validate:"max=2000"`
	Unit            string           `json:"unit" validate:"max=50"`
	Quantity        int              `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

// CreateQuote allocates the next quote number and stores the quote with its
// items as one unit. The returned quote carries its customer and items.
func (s *QuoteService) CreateQuote(ctx context.Context, input *CreateQuoteInput) (*entity.Quote, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	if input.CustomerID == uuid.Nil {
		return nil, apperror.NewFieldValidationError("customer_id", "is required")
	}
	if input.Status != enum.QuoteStatusDraft && input.Status != enum.QuoteStatusSent {
		return nil, apperror.NewFieldValidationError("status", "must be one of: draft sent")
	}

	settings, err := s.tenants.CurrentSettings(ctx)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	items, err := s.buildItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	taxRate := settings.TaxRate.Decimal
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}
	discount := pricing.ClampPercent(input.DiscountPercent)
	taxRate = pricing.ClampRate(taxRate)

	lines := make([]pricing.Line, len(items))
	for i, item := range items {
		lines[i] = pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity, DiscountPercent: item.DiscountPercent}
	}
	totals := pricing.ComputeQuoteTotals(lines, discount, taxRate)

	now := s.now().UTC()
	validUntil := input.ValidUntil
	if validUntil == nil && settings.QuoteValidityDays > 0 {
		v := now.AddDate(0, 0, settings.QuoteValidityDays)
		validUntil = &v
	}

	quote := &entity.Quote{
		TenantID:        tenantID,
		UserID:          input.UserID,
		CustomerID:      customer.ID,
		Title:           strings.TrimSpace(input.Title),
		Status:          input.Status,
		Currency:        settings.Currency,
		Subtotal:        totals.Subtotal,
		DiscountPercent: discount,
		DiscountAmount:  totals.DiscountAmount,
		TaxRate:         taxRate,
		TaxAmount:       totals.TaxAmount,
		Total:           totals.Total,
		Notes:           optional(input.Notes),
		ValidUntil:      validUntil,
		Items:           items,
	}
	if input.Status == enum.QuoteStatusSent {
		quote.SentAt = &now
	}

	if err := s.quoteRepo.CreateWithItems(ctx, quote, settings.QuotePrefix); err != nil {
		return nil, err
	}

	s.log.Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("tenant_id", tenantID.String()),
		zap.String("status", quote.Status.String()),
		zap.String("total", quote.Total.StringFixed(pricing.CurrencyPlaces)),
	)

	// The quote is committed. A failed re-read here would invite a retry
	// that inserts it twice, so answer from memory.
	quote.Customer = customer
	quote.DisplayStatus = quote.EffectiveStatus(now)
	return quote, nil
}

// buildItems freezes description, unit and price on every line
func (s *QuoteService) buildItems(ctx context.Context, inputs []QuoteItemInput) ([]entity.QuoteLineItem, error) {
	var ids []uuid.UUID
	for _, in := range inputs {
		if in.ProductID != nil {
			ids = append(ids, *in.ProductID)
		}
	}

	products := make(map[uuid.UUID]entity.Product, len(ids))
	if len(ids) > 0 {
		found, err := s.productRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			products[p.ID] = p
		}
	}

	items := make([]entity.QuoteLineItem, len(inputs))
	for i, in := range inputs {
		item := entity.QuoteLineItem{
			ProductID:       in.ProductID,
			Description:     strings.TrimSpace(in.Description),
			Unit:            strings.TrimSpace(in.Unit),
			Quantity:        pricing.ClampQuantity(in.Quantity),
			DiscountPercent: pricing.ClampPercent(in.DiscountPercent),
			SortOrder:       i,
		}
		if in.UnitPrice != nil {
			item.UnitPrice = pricing.ClampPrice(*in.UnitPrice)
		}

		if in.ProductID != nil {
			product, ok := products[*in.ProductID]
			if !ok {
				return nil, apperror.NewNotFoundError("Product")
			}
			fromCatalog := item.Description == "" || in.UnitPrice == nil
			if fromCatalog && !product.Active {
				return nil, apperror.NewFieldValidationError(fmt.Sprintf("items[%d].product_id", i), "product is inactive")
			}
			if item.Description == "" {
				item.Description = lineDescription(product.Name, product.DescriptionText())
			}
			if item.Unit == "" {
				item.Unit = product.Unit
			}
			if in.UnitPrice == nil {
				item.UnitPrice = pricing.ClampPrice(product.UnitPrice)
			}
		}

		if item.Description == "" {
			return nil, apperror.NewFieldValidationError(fmt.Sprintf("items[%d].description", i), "is required")
		}
		item.LineTotal = pricing.ComputeLineTotal(item.UnitPrice, item.Quantity, item.DiscountPercent)
		items[i] = item
	}
	return items, nil
}

func lineDescription(name, description string) string {
	if description == "" {
		return name
	}
	return name + " - " + description
}

// GetQuote retrieves a quote with its customer and items
func (s *QuoteService) GetQuote(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}
	quote.DisplayStatus = quote.EffectiveStatus(s.now())
	return quote, nil
}

// ListQuotes lists quotes, optionally filtered by displayed status
func (s *QuoteService) ListQuotes(ctx context.Context, params *repository.QuoteFilterParams) (*pagination.PaginatedResult[entity.Quote], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Now = s.now()

	quotes, total, err := s.quoteRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return pagination.Paginate(quotes, params.Pagination, total), nil
}

// MarkSent records that the quote was delivered to the customer
func (s *QuoteService) MarkSent(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return s.transition(ctx, id, enum.QuoteStatusSent)
}

// MarkViewed records that the customer opened the quote. A draft cannot be viewed.
func (s *QuoteService) MarkViewed(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return s.transition(ctx, id, enum.QuoteStatusViewed)
}

// MarkAccepted records the customer's acceptance
func (s *QuoteService) MarkAccepted(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return s.transition(ctx, id, enum.QuoteStatusAccepted)
}

// MarkRejected records the customer's rejection
func (s *QuoteService) MarkRejected(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	return s.transition(ctx, id, enum.QuoteStatusRejected)
}

func (s *QuoteService) transition(ctx context.Context, id uuid.UUID, to enum.QuoteStatus) (*entity.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, apperror.NewNotFoundError("Quote")
	}

	now := s.now()
	from := quote.Status
	if !from.CanTransitionTo(to) {
		return nil, transitionError(from, to)
	}
	if to == enum.QuoteStatusAccepted && quote.IsExpired(now) {
		return nil, apperror.NewStateError("Quote has expired and can no longer be accepted")
	}

	moved, err := s.quoteRepo.UpdateStatus(ctx, id, from, to, now.UTC())
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, apperror.NewStateError(fmt.Sprintf("Quote is no longer %s", from))
	}

	s.log.Info("quote status changed",
		zap.String("quote_id", id.String()),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)

	return s.GetQuote(ctx, id)
}

func transitionError(from, to enum.QuoteStatus) error {
	switch {
	case from == enum.QuoteStatusDraft && to == enum.QuoteStatusViewed:
		return apperror.NewStateError("Quote must be sent before it can be viewed")
	case from.IsTerminal():
		return apperror.NewStateError(fmt.Sprintf("Quote is already %s", from))
	case from == to:
		return apperror.NewStateError(fmt.Sprintf("Quote is already %s", from))
	default:
		return apperror.NewStateError(fmt.Sprintf("Cannot move quote from %s to %s", from, to))
	}
}

// DeleteQuote removes a quote and its line items
func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if quote == nil {
		return apperror.NewNotFoundError("Quote")
	}

	if err := s.quoteRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("quote deleted", zap.String("quote_id", id.String()), zap.String("quote_number", quote.QuoteNumber))
	return nil
}
