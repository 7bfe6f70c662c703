package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	domainRepo "github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductListFillsDefaults(t *testing.T) {
	db := newTestDB(t)
	ctx, tenant := newTenant(t, db, "Acme")
	repo := NewProductRepository(db)
	categories := NewCategoryRepository(db)

	services := &entity.Category{TenantID: tenant.ID, Name: "Services", Slug: "services"}
	require.NoError(t, categories.Create(ctx, services))

	require.NoError(t, repo.Create(ctx, &entity.Product{
		TenantID: tenant.ID, CategoryID: &services.ID, Name: "Consulting hour", Slug: "consulting-hour",
		UnitPrice: decimal.NewFromInt(1200), Unit: "hour", Active: true,
	}))
	require.NoError(t, repo.Create(ctx, &entity.Product{
		TenantID: tenant.ID, Name: "Bare item", Slug: "bare-item", UnitPrice: decimal.Zero, Active: true,
	}))

	// legacy rows may carry NULL optional columns
	require.NoError(t, db.Exec("UPDATE products SET unit = NULL, description = NULL WHERE slug = ?", "bare-item").Error)

	products, total, err := repo.List(ctx, &domainRepo.ProductFilterParams{Pagination: pagination.DefaultPagination()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, products, 2)

	bare, consulting := products[0], products[1]
	assert.Equal(t, "Bare item", bare.Name)
	assert.Equal(t, DefaultCategoryName, bare.CategoryName)
	assert.Equal(t, DefaultUnit, bare.Unit)
	assert.True(t, bare.UnitPrice.IsZero())
	require.NotNil(t, bare.Description)
	assert.Equal(t, "", *bare.Description)

	assert.Equal(t, "Services", consulting.CategoryName)
	assert.Equal(t, "hour", consulting.Unit)
	assert.Equal(t, "1200.00", consulting.UnitPrice.StringFixed(2))
}

func TestProductDeactivateHidesFromDefaultList(t *testing.T) {
	db := newTestDB(t)
	ctx, tenant := newTenant(t, db, "Acme")
	repo := NewProductRepository(db)

	p := &entity.Product{TenantID: tenant.ID, Name: "Licence", Slug: "licence", UnitPrice: decimal.NewFromInt(99), Active: true}
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.SetActive(ctx, p.ID, false)
	require.NoError(t, err)
	assert.True(t, ok)

	active, _, err := repo.List(ctx, &domainRepo.ProductFilterParams{Pagination: pagination.DefaultPagination()})
	require.NoError(t, err)
	assert.Empty(t, active)

	all, _, err := repo.List(ctx, &domainRepo.ProductFilterParams{Pagination: pagination.DefaultPagination(), IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].Active)

	ok, err = repo.SetActive(ctx, uuid.New(), false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductSearchAndTenantScope(t *testing.T) {
	db := newTestDB(t)
	ctxA, tenantA := newTenant(t, db, "A")
	ctxB, _ := newTenant(t, db, "B")
	repo := NewProductRepository(db)

	require.NoError(t, repo.Create(ctxA, &entity.Product{TenantID: tenantA.ID, Name: "Consulting hour", Slug: "consulting-hour", Active: true}))
	require.NoError(t, repo.Create(ctxA, &entity.Product{TenantID: tenantA.ID, Name: "Licence", Slug: "licence", Active: true}))

	found, _, err := repo.List(ctxA, &domainRepo.ProductFilterParams{Search: "CONSULT"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Consulting hour", found[0].Name)

	other, total, err := repo.List(ctxB, &domainRepo.ProductFilterParams{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, other)
}

func TestProductGetByIDResolvesCategory(t *testing.T) {
	db := newTestDB(t)
	ctx, tenant := newTenant(t, db, "Acme")
	repo := NewProductRepository(db)

	p := &entity.Product{TenantID: tenant.ID, Name: "Widget", Slug: "widget", Active: true}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, DefaultCategoryName, got.CategoryName)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
