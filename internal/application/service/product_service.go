package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/domain/repository"
	infraRepo "github.com/sangkips/quotebuilder-api/internal/infrastructure/repository"
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
	"github.com/sangkips/quotebuilder-api/pkg/utils"
	"github.com/sangkips/quotebuilder-api/pkg/validator"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	validate     *validator.Validator
}

// NewProductService creates a new product service
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	validate *validator.Validator,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		validate:     validate,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	UserID      uuid.UUID       `json:"-"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description *string         `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Unit        string          `json:"unit" validate:"max=50"`
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	if input.UnitPrice.IsNegative() {
		return nil, apperror.NewFieldValidationError("unit_price", "must be greater than or equal to 0")
	}
	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		TenantID:    tenantID,
		UserID:      input.UserID,
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		UnitPrice:   input.UnitPrice,
		Unit:        strings.TrimSpace(input.Unit),
		Active:      true,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return s.GetProductByID(ctx, product.ID)
}

func (s *ProductService) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	category, err := s.categoryRepo.GetByID(ctx, *id)
	if err != nil {
		return err
	}
	if category == nil {
		return apperror.NewNotFoundError("Category")
	}
	return nil
}

// uniqueSlug slugifies name, adding a random suffix when the slug is taken
func (s *ProductService) uniqueSlug(ctx context.Context, name string) (string, error) {
	slug := utils.Slugify(name)
	existing, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return utils.SlugWithSuffix(name), nil
	}
	return slug, nil
}

// GetProduct retrieves a product by slug
func (s *ProductService) GetProduct(ctx context.Context, slug string) (*entity.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return pagination.Paginate(products, params.Pagination, total), nil
}

// UpdateProductInput represents the update product input. Nil fields are left unchanged.
type UpdateProductInput struct {
	ID          uuid.UUID        `json:"-"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	Unit        *string          `json:"unit" validate:"omitempty,max=50"`
}

// UpdateProduct updates a product. Quotes already issued keep their copied
// descriptions and prices.
func (s *ProductService) UpdateProduct(ctx context.Context, input *UpdateProductInput) (*entity.Product, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, apperror.NewFieldValidationError("name", "is required")
		}
		input.Name = &trimmed
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	if input.UnitPrice != nil && input.UnitPrice.IsNegative() {
		return nil, apperror.NewFieldValidationError("unit_price", "must be greater than or equal to 0")
	}

	product, err := s.GetProductByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = input.CategoryID
	}
	if input.Name != nil && *input.Name != product.Name {
		slug, err := s.uniqueSlug(ctx, *input.Name)
		if err != nil {
			return nil, err
		}
		product.Name = *input.Name
		product.Slug = slug
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.UnitPrice != nil {
		product.UnitPrice = *input.UnitPrice
	}
	if input.Unit != nil {
		product.Unit = strings.TrimSpace(*input.Unit)
	}

	// drop the read-side join so Save does not touch categories
	product.Category = nil
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return s.GetProductByID(ctx, product.ID)
}

// DeactivateProduct hides a product from new selections
func (s *ProductService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

// ActivateProduct makes a deactivated product selectable again
func (s *ProductService) ActivateProduct(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *ProductService) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	found, err := s.productRepo.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NewNotFoundError("Product")
	}
	return nil
}
