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
)

// CategoryService handles category-related operations
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategoryInput represents the create category input
type CreateCategoryInput struct {
	Name string
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldValidationError("name", "is required")
	}

	slug := utils.Slugify(name)

	// Check if slug already exists
	existing, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Category with this name already exists")
	}

	category := &entity.Category{
		TenantID: tenantID,
		Name:     name,
		Slug:     slug,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	return category, nil
}

// ListCategories lists the organization's categories
func (s *CategoryService) ListCategories(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Category], error) {
	categories, total, err := s.categoryRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	return pagination.Paginate(categories, params, total), nil
}
