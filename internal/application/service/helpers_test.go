package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/domain/enum"
	"github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/internal/infrastructure/database"
	"github.com/sangkips/quotebuilder-api/internal/infrastructure/draftstore"
	infraRepo "github.com/sangkips/quotebuilder-api/internal/infrastructure/repository"
	"github.com/sangkips/quotebuilder-api/pkg/email"
	"github.com/sangkips/quotebuilder-api/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.QuoteEmail
	err  error
}

func (m *fakeMailer) SendQuote(_ context.Context, q email.QuoteEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, q)
	return nil
}

type fixture struct {
	db     *gorm.DB
	ctx    context.Context
	tenant *entity.Tenant
	userID uuid.UUID
	now    time.Time

	quoteRepo  repository.QuoteRepository
	drafts     *draftstore.MemoryStore
	mailer     *fakeMailer
	tenants    *TenantService
	categories *CategoryService
	products   *ProductService
	customers  *CustomerService
	quotes     *QuoteService
	wizard     *WizardService
	documents  *DocumentService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.Models()...))
	return db
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	log := zap.NewNop()
	validate := validator.New()

	f := &fixture{
		db:     db,
		userID: uuid.New(),
		now:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		drafts: draftstore.NewMemoryStore(time.Hour, time.Hour),
		mailer: &fakeMailer{},
	}
	t.Cleanup(f.drafts.Close)

	tenantRepo := infraRepo.NewTenantRepository(db)
	customerRepo := infraRepo.NewCustomerRepository(db)
	productRepo := infraRepo.NewProductRepository(db)
	categoryRepo := infraRepo.NewCategoryRepository(db)
	f.quoteRepo = infraRepo.NewQuoteRepository(db)

	f.tenants = NewTenantService(tenantRepo, entity.DefaultTenantSettings())
	f.categories = NewCategoryService(categoryRepo)
	f.products = NewProductService(productRepo, categoryRepo, validate)
	f.customers = NewCustomerService(customerRepo, validate, "SE")
	f.quotes = NewQuoteService(f.quoteRepo, customerRepo, productRepo, f.tenants, validate, log)
	f.quotes.now = f.clock
	f.wizard = NewWizardService(f.drafts, productRepo, f.customers, f.quotes, f.tenants, log)
	f.wizard.now = f.clock
	f.documents = NewDocumentService(f.quotes, f.tenants, f.mailer, log)

	tenant, err := f.tenants.CreateTenant(context.Background(), &CreateTenantInput{Name: "Nordic Consulting AB"})
	require.NoError(t, err)
	f.tenant = tenant
	f.ctx = infraRepo.WithTenant(context.Background(), tenant.ID)
	return f
}

func (f *fixture) clock() time.Time { return f.now }

// withQuoteRepo rebuilds the quote and wizard services over repo
func (f *fixture) withQuoteRepo(repo repository.QuoteRepository) {
	customerRepo := infraRepo.NewCustomerRepository(f.db)
	productRepo := infraRepo.NewProductRepository(f.db)
	f.quotes = NewQuoteService(repo, customerRepo, productRepo, f.tenants, validator.New(), zap.NewNop())
	f.quotes.now = f.clock
	f.wizard = NewWizardService(f.drafts, productRepo, f.customers, f.quotes, f.tenants, zap.NewNop())
	f.wizard.now = f.clock
}

func (f *fixture) anna(t *testing.T) *entity.Customer {
	t.Helper()
	c, err := f.customers.CreateCustomer(f.ctx, &CreateCustomerInput{
		UserID: f.userID,
		Name:   "Anna Andersson",
		Email:  "anna@example.com",
		City:   "Uppsala",
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) consultingHour(t *testing.T) *entity.Product {
	t.Helper()
	p, err := f.products.CreateProduct(f.ctx, &CreateProductInput{
		UserID:    f.userID,
		Name:      "Consulting hour",
		UnitPrice: decimal.NewFromInt(1200),
		Unit:      "hour",
	})
	require.NoError(t, err)
	return p
}

// consultingQuote creates the reference quote: 3 hours at 1200 with 10% off and 25% tax
func (f *fixture) consultingQuote(t *testing.T, status enum.QuoteStatus, validUntil *time.Time) *entity.Quote {
	t.Helper()
	customer := f.anna(t)
	product := f.consultingHour(t)

	q, err := f.quotes.CreateQuote(f.ctx, &CreateQuoteInput{
		UserID:     f.userID,
		CustomerID: customer.ID,
		Title:      "Strategy workshop",
		Status:     status,
		ValidUntil: validUntil,
		Items: []QuoteItemInput{
			{ProductID: &product.ID, Quantity: 3, DiscountPercent: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	return q
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
