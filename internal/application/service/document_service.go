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
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
	"github.com/sangkips/quotebuilder-api/pkg/email"
	"github.com/sangkips/quotebuilder-api/pkg/pdf"
	"github.com/sangkips/quotebuilder-api/pkg/textdoc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Download formats
const (
	FormatPDF  = "pdf"
	FormatText = "txt"
)

const dateLayout = "2006-01-02"

// QuoteMailer delivers a rendered quote to its customer
type QuoteMailer interface {
	SendQuote(ctx context.Context, q email.QuoteEmail) error
}

// DocumentService renders quotes and carries out download and send.
// It never changes a quote itself; send goes through QuoteService.
type DocumentService struct {
	quotes  *QuoteService
	tenants *TenantService
	mailer  QuoteMailer
	log     *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(quotes *QuoteService, tenants *TenantService, mailer QuoteMailer, log *zap.Logger) *DocumentService {
	return &DocumentService{
		quotes:  quotes,
		tenants: tenants,
		mailer:  mailer,
		log:     log,
	}
}

// DownloadFile is a rendered quote ready to be served
type DownloadFile struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Render returns the display-ready document for a quote
func (s *DocumentService) Render(ctx context.Context, id uuid.UUID) (*entity.QuoteDocument, error) {
	doc, _, err := s.render(ctx, id)
	return doc, err
}

func (s *DocumentService) render(ctx context.Context, id uuid.UUID) (*entity.QuoteDocument, *entity.Quote, error) {
	quote, err := s.quotes.GetQuote(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, nil, err
	}
	return BuildQuoteDocument(quote, tenant), quote, nil
}

// BuildQuoteDocument composes the document view of a hydrated quote
func BuildQuoteDocument(quote *entity.Quote, tenant *entity.Tenant) *entity.QuoteDocument {
	settings := tenant.Settings
	loc := location(settings.Timezone)

	doc := &entity.QuoteDocument{
		Header: entity.DocumentHeader{
			CompanyName: tenant.Name,
			Address:     settings.Address,
			Email:       settings.Email,
			Phone:       settings.Phone,
			TaxID:       settings.TaxID,
		},
		QuoteNumber: quote.QuoteNumber,
		Title:       quote.Title,
		Status:      quote.DisplayStatus.String(),
		IssueDate:   quote.CreatedAt.In(loc).Format(dateLayout),
		Currency:    quote.Currency,
		Lines:       make([]entity.DocumentLine, 0, len(quote.Items)),
		Subtotal:    money(quote.Subtotal),
		TaxLabel:    fmt.Sprintf("%s (%s%%)", settings.TaxLabel, quote.TaxRate.String()),
		TaxAmount:   money(quote.TaxAmount),
		Total:       money(quote.Total),
	}
	if quote.ValidUntil != nil {
		doc.ValidUntil = quote.ValidUntil.In(loc).Format(dateLayout)
	}
	if quote.Notes != nil {
		doc.Notes = *quote.Notes
	}
	if quote.DiscountPercent.IsPositive() {
		doc.DiscountLabel = fmt.Sprintf("Discount (%s%%)", quote.DiscountPercent.String())
		doc.DiscountAmount = money(quote.DiscountAmount)
	}

	if c := quote.Customer; c != nil {
		doc.Customer = entity.DocumentParty{
			Name:        c.Name,
			CompanyName: c.DisplayCompany(),
			Email:       c.Email,
			Phone:       deref(c.Phone),
			Address:     deref(c.Address),
			City:        deref(c.City),
			PostalCode:  deref(c.PostalCode),
		}
	}

	for i, item := range quote.Items {
		line := entity.DocumentLine{
			Position:    i + 1,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   money(item.UnitPrice),
			Total:       money(item.LineTotal),
		}
		if item.DiscountPercent.IsPositive() {
			line.Discount = item.DiscountPercent.String() + "%"
		}
		doc.Lines = append(doc.Lines, line)
	}
	return doc
}

// Download renders the quote as a PDF or plain text file
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID, format string) (*DownloadFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatText {
		return nil, apperror.NewFieldValidationError("format", "must be one of: pdf txt")
	}

	doc, _, err := s.render(ctx, id)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatText:
		return &DownloadFile{
			FileName:    doc.QuoteNumber + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Content:     FormatQuoteText(doc),
		}, nil
	default:
		content, err := pdf.GenerateQuotePDF(doc)
		if err != nil {
			return nil, err
		}
		return &DownloadFile{
			FileName:    doc.QuoteNumber + ".pdf",
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	}
}

// Send emails the quote PDF to the customer. A draft is marked sent once the
// message is delivered; a sent or viewed quote is delivered again unchanged.
func (s *DocumentService) Send(ctx context.Context, id uuid.UUID) (*entity.Quote, error) {
	doc, quote, err := s.render(ctx, id)
	if err != nil {
		return nil, err
	}

	switch quote.DisplayStatus {
	case enum.QuoteStatusDraft, enum.QuoteStatusSent, enum.QuoteStatusViewed:
	default:
		return nil, apperror.NewStateError(fmt.Sprintf("Quote is %s and cannot be sent", quote.DisplayStatus))
	}
	if quote.Customer == nil || strings.TrimSpace(quote.Customer.Email) == "" {
		return nil, apperror.NewFieldValidationError("customer.email", "is required")
	}

	content, err := pdf.GenerateQuotePDF(doc)
	if err != nil {
		return nil, err
	}

	err = s.mailer.SendQuote(ctx, email.QuoteEmail{
		To:           quote.Customer.Email,
		CustomerName: doc.Customer.Name,
		CompanyName:  doc.Header.CompanyName,
		QuoteNumber:  doc.QuoteNumber,
		Title:        doc.Title,
		Total:        doc.Total,
		Currency:     doc.Currency,
		ValidUntil:   doc.ValidUntil,
		Attachments:  []email.Attachment{{FileName: doc.QuoteNumber + ".pdf", Content: content}},
	})
	if err != nil {
		return nil, fmt.Errorf("deliver quote %s: %w", quote.QuoteNumber, err)
	}

	s.log.Info("quote delivered",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("to", quote.Customer.Email),
	)

	if quote.Status != enum.QuoteStatusDraft {
		return quote, nil
	}
	return s.quotes.MarkSent(ctx, quote.ID)
}

var textColumns = []textdoc.Column{
	{Width: 3, Align: textdoc.AlignRight},
	{Width: 30, Align: textdoc.AlignLeft},
	{Width: 9, Align: textdoc.AlignRight},
	{Width: 12, Align: textdoc.AlignRight},
	{Width: 5, Align: textdoc.AlignRight},
	{Width: 12, Align: textdoc.AlignRight},
}

// FormatQuoteText lays out a quote document as fixed-width text
func FormatQuoteText(doc *entity.QuoteDocument) []byte {
	d := textdoc.NewDocument(76)

	// Header
	d.Aligned(textdoc.AlignCenter, doc.Header.CompanyName)
	for _, line := range []string{doc.Header.Address, doc.Header.Email, doc.Header.Phone} {
		if line != "" {
			d.Aligned(textdoc.AlignCenter, line)
		}
	}
	if doc.Header.TaxID != "" {
		d.Aligned(textdoc.AlignCenter, "Tax ID: "+doc.Header.TaxID)
	}

	d.Separator('=')

	d.KeyValue("Quote:", doc.QuoteNumber)
	if doc.Title != "" {
		d.KeyValue("Title:", doc.Title)
	}
	d.KeyValue("Date:", doc.IssueDate)
	if doc.ValidUntil != "" {
		d.KeyValue("Valid until:", doc.ValidUntil)
	}
	d.KeyValue("Status:", doc.Status)

	d.Separator('-')

	// Customer
	d.Text("Customer:")
	for _, line := range []string{
		doc.Customer.Name,
		doc.Customer.CompanyName,
		doc.Customer.Address,
		strings.TrimSpace(doc.Customer.PostalCode + " " + doc.Customer.City),
		doc.Customer.Email,
		doc.Customer.Phone,
	} {
		if line != "" {
			d.Text("  " + line)
		}
	}

	d.Separator('-')

	// Items
	d.Row(textColumns, "#", "Description", "Qty", "Unit price", "Disc", "Total")
	d.Separator('-')
	for _, l := range doc.Lines {
		qty := fmt.Sprintf("%d", l.Quantity)
		if l.Unit != "" {
			qty += " " + l.Unit
		}
		d.Row(textColumns, fmt.Sprintf("%d", l.Position), l.Description, qty, l.UnitPrice, l.Discount, l.Total)
	}

	d.Separator('-')

	// Totals
	d.KeyValue("Subtotal:", doc.Subtotal)
	if doc.DiscountLabel != "" {
		d.KeyValue(doc.DiscountLabel+":", "-"+doc.DiscountAmount)
	}
	d.KeyValue(doc.TaxLabel+":", doc.TaxAmount)
	d.KeyValue("TOTAL "+doc.Currency+":", doc.Total)

	if doc.Notes != "" {
		d.Separator('-')
		d.Text(doc.Notes)
	}

	return d.Bytes()
}

func money(d decimal.Decimal) string {
	return d.StringFixed(pricing.CurrencyPlaces)
}

func location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
