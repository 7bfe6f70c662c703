package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/domain/enum"
	domainRepo "github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuote(tenantID, customerID uuid.UUID, status enum.QuoteStatus, validUntil *time.Time) *entity.Quote {
	return &entity.Quote{
		TenantID:   tenantID,
		CustomerID: customerID,
		Title:      "Consulting",
		Status:     status,
		Currency:   "SEK",
		Subtotal:   decimal.NewFromInt(3240),
		TaxRate:    decimal.NewFromInt(25),
		TaxAmount:  decimal.NewFromInt(810),
		Total:      decimal.NewFromInt(4050),
		ValidUntil: validUntil,
		Items: []entity.QuoteLineItem{
			{Description: "Consulting hour", Unit: "hour", Quantity: 3, UnitPrice: decimal.NewFromInt(1200),
				DiscountPercent: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(3240), SortOrder: 0},
			{Description: "Travel", Unit: "trip", Quantity: 1, UnitPrice: decimal.Zero,
				DiscountPercent: decimal.Zero, LineTotal: decimal.Zero, SortOrder: 1},
		},
	}
}

func TestQuoteNumbersAreSequentialPerTenant(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuoteRepository(db)
	ctxA, tenantA := newTenant(t, db, "A")
	ctxB, tenantB := newTenant(t, db, "B")
	custA := newCustomer(t, db, ctxA, tenantA.ID, "Anna", "anna@example.com")
	custB := newCustomer(t, db, ctxB, tenantB.ID, "Bo", "bo@example.com")

	var numbers []string
	for i := 0; i < 2; i++ {
		q := newQuote(tenantA.ID, custA.ID, enum.QuoteStatusDraft, nil)
		require.NoError(t, repo.CreateWithItems(ctxA, q, "QUO-"))
		numbers = append(numbers, q.QuoteNumber)
	}
	other := newQuote(tenantB.ID, custB.ID, enum.QuoteStatusDraft, nil)
	require.NoError(t, repo.CreateWithItems(ctxB, other, "Q"))

	assert.Equal(t, []string{"QUO-000001", "QUO-000002"}, numbers)
	assert.Equal(t, "Q000001", other.QuoteNumber)
}

func TestQuoteGetWithItemsLoadsCustomerAndOrderedItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuoteRepository(db)
	ctx, tenant := newTenant(t, db, "A")
	cust := newCustomer(t, db, ctx, tenant.ID, "Anna Andersson", "anna@example.com")

	q := newQuote(tenant.ID, cust.ID, enum.QuoteStatusDraft, nil)
	require.NoError(t, repo.CreateWithItems(ctx, q, "QUO-"))

	got, err := repo.GetWithItems(ctx, q.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Customer)
	assert.Equal(t, "Anna Andersson", got.Customer.Name)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Consulting hour", got.Items[0].Description)
	assert.Equal(t, "Travel", got.Items[1].Description)
	assert.Equal(t, "3240.00", got.Items[0].LineTotal.StringFixed(2))
	assert.Equal(t, "4050.00", got.Total.StringFixed(2))

	_, otherTenant := newTenant(t, db, "B")
	missing, err := repo.GetWithItems(WithTenant(context.Background(), otherTenant.ID), q.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestQuoteUpdateStatusIsConditional(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuoteRepository(db)
	ctx, tenant := newTenant(t, db, "A")
	cust := newCustomer(t, db, ctx, tenant.ID, "Anna", "anna@example.com")

	q := newQuote(tenant.ID, cust.ID, enum.QuoteStatusDraft, nil)
	require.NoError(t, repo.CreateWithItems(ctx, q, "QUO-"))

	sentAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ok, err := repo.UpdateStatus(ctx, q.ID, enum.QuoteStatusDraft, enum.QuoteStatusSent, sentAt)
	require.NoError(t, err)
	assert.True(t, ok)

	// a second writer still believing the quote is a draft loses
	ok, err = repo.UpdateStatus(ctx, q.ID, enum.QuoteStatusDraft, enum.QuoteStatusSent, sentAt.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	acceptedAt := sentAt.Add(24 * time.Hour)
	ok, err = repo.UpdateStatus(ctx, q.ID, enum.QuoteStatusSent, enum.QuoteStatusAccepted, acceptedAt)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.QuoteStatusAccepted, got.Status)
	require.NotNil(t, got.SentAt)
	require.NotNil(t, got.AcceptedAt)
	assert.True(t, got.SentAt.Equal(sentAt))
	assert.True(t, got.AcceptedAt.Equal(acceptedAt))
	assert.Nil(t, got.ViewedAt)
	assert.Nil(t, got.RejectedAt)
}

func TestQuoteListDerivesExpired(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuoteRepository(db)
	ctx, tenant := newTenant(t, db, "A")
	cust := newCustomer(t, db, ctx, tenant.ID, "Anna", "anna@example.com")

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	lapsed := newQuote(tenant.ID, cust.ID, enum.QuoteStatusSent, &past)
	live := newQuote(tenant.ID, cust.ID, enum.QuoteStatusSent, &future)
	oldDraft := newQuote(tenant.ID, cust.ID, enum.QuoteStatusDraft, &past)
	for _, q := range []*entity.Quote{lapsed, live, oldDraft} {
		require.NoError(t, repo.CreateWithItems(ctx, q, "QUO-"))
	}

	status := func(s enum.QuoteStatus) *enum.QuoteStatus { return &s }
	ids := func(quotes []entity.Quote) []uuid.UUID {
		var out []uuid.UUID
		for _, q := range quotes {
			out = append(out, q.ID)
		}
		return out
	}

	expired, total, err := repo.List(ctx, &domainRepo.QuoteFilterParams{Status: status(enum.QuoteStatusExpired), Now: now})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []uuid.UUID{lapsed.ID}, ids(expired))
	assert.Equal(t, enum.QuoteStatusExpired, expired[0].DisplayStatus)
	assert.Equal(t, enum.QuoteStatusSent, expired[0].Status)

	sent, _, err := repo.List(ctx, &domainRepo.QuoteFilterParams{Status: status(enum.QuoteStatusSent), Now: now})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{live.ID}, ids(sent))

	drafts, _, err := repo.List(ctx, &domainRepo.QuoteFilterParams{Status: status(enum.QuoteStatusDraft), Now: now})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, enum.QuoteStatusDraft, drafts[0].DisplayStatus)

	all, total, err := repo.List(ctx, &domainRepo.QuoteFilterParams{Now: now})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 3)
}

func TestQuoteDeleteCascadesToItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuoteRepository(db)
	ctx, tenant := newTenant(t, db, "A")
	cust := newCustomer(t, db, ctx, tenant.ID, "Anna", "anna@example.com")

	keep := newQuote(tenant.ID, cust.ID, enum.QuoteStatusDraft, nil)
	drop := newQuote(tenant.ID, cust.ID, enum.QuoteStatusDraft, nil)
	require.NoError(t, repo.CreateWithItems(ctx, keep, "QUO-"))
	require.NoError(t, repo.CreateWithItems(ctx, drop, "QUO-"))

	require.NoError(t, repo.Delete(ctx, drop.ID))

	gone, err := repo.GetByID(ctx, drop.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	var orphaned int64
	require.NoError(t, db.Model(&entity.QuoteLineItem{}).Where("quote_id = ?", drop.ID).Count(&orphaned).Error)
	assert.Zero(t, orphaned)

	var kept int64
	require.NoError(t, db.Model(&entity.QuoteLineItem{}).Where("quote_id = ?", keep.ID).Count(&kept).Error)
	assert.EqualValues(t, 2, kept)
}

func TestQuoteListSearchesNumberAndTitle(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuoteRepository(db)
	ctx, tenant := newTenant(t, db, "A")
	cust := newCustomer(t, db, ctx, tenant.ID, "Anna", "anna@example.com")

	first := newQuote(tenant.ID, cust.ID, enum.QuoteStatusDraft, nil)
	first.Title = "Website redesign"
	second := newQuote(tenant.ID, cust.ID, enum.QuoteStatusDraft, nil)
	require.NoError(t, repo.CreateWithItems(ctx, first, "QUO-"))
	require.NoError(t, repo.CreateWithItems(ctx, second, "QUO-"))

	byTitle, _, err := repo.List(ctx, &domainRepo.QuoteFilterParams{Search: "REDESIGN"})
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, first.ID, byTitle[0].ID)

	byNumber, _, err := repo.List(ctx, &domainRepo.QuoteFilterParams{Search: "000002"})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, second.ID, byNumber[0].ID)
}
