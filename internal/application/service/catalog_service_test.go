package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomerValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input CreateCustomerInput
		field string
	}{
		{"missing name", CreateCustomerInput{Name: "  ", Email: "anna@example.com"}, "name"},
		{"missing email", CreateCustomerInput{Name: "Anna"}, "email"},
		{"malformed email", CreateCustomerInput{Name: "Anna", Email: "anna.example.com"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.customers.CreateCustomer(f.ctx, &input)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))

			appErr := apperror.GetAppError(err)
			require.NotEmpty(t, appErr.Errors)
			assert.Equal(t, tt.field, appErr.Errors[0].Field)
		})
	}
}

func TestCreateCustomerNormalizesContactFields(t *testing.T) {
	f := newFixture(t)

	c, err := f.customers.CreateCustomer(f.ctx, &CreateCustomerInput{
		Name:        " Anna Andersson ",
		Email:       "Anna@Example.com",
		Phone:       "070-123 45 67",
		CompanyName: "  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Anna Andersson", c.Name)
	assert.Equal(t, "anna@example.com", c.Email)
	require.NotNil(t, c.Phone)
	assert.Equal(t, "+46701234567", *c.Phone)
	assert.Nil(t, c.CompanyName)
}

func TestCreateCustomerRequiresTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.customers.CreateCustomer(context.Background(), &CreateCustomerInput{Name: "Anna", Email: "anna@example.com"})
	assert.ErrorIs(t, err, apperror.ErrTenantRequired)
}

func TestFindCustomersMatching(t *testing.T) {
	f := newFixture(t)
	f.anna(t)
	_, err := f.customers.CreateCustomer(f.ctx, &CreateCustomerInput{Name: "Bo Berg", Email: "bo@berg.se", CompanyName: "Anderssons Bygg"})
	require.NoError(t, err)

	found, err := f.customers.FindCustomersMatching(f.ctx, "anders", 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = f.customers.FindCustomersMatching(f.ctx, "BERG.SE", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bo Berg", found[0].Name)
}

func TestUpdateCustomer(t *testing.T) {
	f := newFixture(t)
	anna := f.anna(t)

	blank := ""
	_, err := f.customers.UpdateCustomer(f.ctx, &UpdateCustomerInput{ID: anna.ID, Email: &blank})
	assert.True(t, apperror.IsValidation(err))

	city := "Lund"
	updated, err := f.customers.UpdateCustomer(f.ctx, &UpdateCustomerInput{ID: anna.ID, City: &city})
	require.NoError(t, err)
	require.NotNil(t, updated.City)
	assert.Equal(t, "Lund", *updated.City)

	_, err = f.customers.UpdateCustomer(f.ctx, &UpdateCustomerInput{ID: uuid.New(), City: &city})
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.products.CreateProduct(f.ctx, &CreateProductInput{Name: "Licence", UnitPrice: decimal.NewFromInt(-1)})
	assert.True(t, apperror.IsValidation(err))

	_, err = f.products.CreateProduct(f.ctx, &CreateProductInput{Name: ""})
	assert.True(t, apperror.IsValidation(err))

	missing := uuid.New()
	_, err = f.products.CreateProduct(f.ctx, &CreateProductInput{Name: "Licence", CategoryID: &missing})
	assert.True(t, apperror.IsNotFound(err))

	first := f.consultingHour(t)
	second := f.consultingHour(t)
	assert.Equal(t, "consulting-hour", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Equal(t, "Uncategorized", first.CategoryName)
	assert.True(t, first.Active)
}

func TestProductCategoryAndListing(t *testing.T) {
	f := newFixture(t)

	services, err := f.categories.CreateCategory(f.ctx, &CreateCategoryInput{Name: "Services"})
	require.NoError(t, err)
	_, err = f.categories.CreateCategory(f.ctx, &CreateCategoryInput{Name: "services"})
	assert.Equal(t, "conflict", string(apperror.GetAppError(err).Kind))

	workshop, err := f.products.CreateProduct(f.ctx, &CreateProductInput{
		Name: "Workshop day", CategoryID: &services.ID, UnitPrice: decimal.NewFromInt(9000), Unit: "day",
	})
	require.NoError(t, err)
	assert.Equal(t, "Services", workshop.CategoryName)
	f.consultingHour(t)

	list, err := f.products.ListProducts(f.ctx, &repository.ProductFilterParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Pagination.Total)

	require.NoError(t, f.products.DeactivateProduct(f.ctx, workshop.ID))
	list, err = f.products.ListProducts(f.ctx, &repository.ProductFilterParams{Pagination: pagination.DefaultPagination()})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Consulting hour", list.Items[0].Name)

	err = f.products.DeactivateProduct(f.ctx, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateProductRenamesSlug(t *testing.T) {
	f := newFixture(t)
	p := f.consultingHour(t)

	name := "Senior consulting hour"
	updated, err := f.products.UpdateProduct(f.ctx, &UpdateProductInput{ID: p.ID, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "senior-consulting-hour", updated.Slug)
	assert.Equal(t, "1200.00", updated.UnitPrice.StringFixed(2))

	blank := " "
	_, err = f.products.UpdateProduct(f.ctx, &UpdateProductInput{ID: p.ID, Name: &blank})
	assert.True(t, apperror.IsValidation(err))
}
