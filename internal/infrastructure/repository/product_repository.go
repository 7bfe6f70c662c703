package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	domainRepo "github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
	"gorm.io/gorm"
)

var productSortColumns = map[string]string{
	"name":       "products.name",
	"unit_price": "products.unit_price",
	"created_at": "products.created_at",
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) domainRepo.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	return wrapDBError(r.db.WithContext(ctx).Omit("Tenant", "Category").Create(product).Error)
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *productRepository) first(ctx context.Context, cond string, arg interface{}) (*entity.Product, error) {
	product, err := firstOrNil[entity.Product](r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Category").
		Where(cond, arg))
	if product != nil {
		applyProductDefaults(product)
	}
	return product, err
}

// GetByIDs retrieves multiple products by their IDs in a single query
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	var products []entity.Product
	err := r.db.WithContext(ctx).
		Scopes(TenantScope(ctx)).
		Preload("Category").
		Where("id IN ?", ids).
		Find(&products).Error
	if err != nil {
		return nil, wrapDBError(err)
	}
	for i := range products {
		applyProductDefaults(&products[i])
	}
	return products, nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	return wrapDBError(r.db.WithContext(ctx).Omit("Tenant", "Category").Save(product).Error)
}

func (r *productRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Scopes(TenantScope(ctx)).
		Where("id = ?", id).
		Update("active", active)
	if result.Error != nil {
		return false, wrapDBError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *productRepository) base(ctx context.Context, params *domainRepo.ProductFilterParams) *gorm.DB {
	query := r.db.WithContext(ctx).Table("products").
		Joins("LEFT JOIN categories ON categories.id = products.category_id AND categories.deleted_at IS NULL").
		Where("products.deleted_at IS NULL").
		Scopes(tenantScopeOn(ctx, "products"))

	if !params.IncludeInactive {
		query = query.Where("products.active = ?", true)
	}

	if params.Search != "" {
		pattern := likePattern(params.Search)
		query = query.Where("(LOWER(products.name) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(products.description, '')) LIKE ? ESCAPE '\\')",
			pattern, pattern)
	}

	if params.CategoryID != nil {
		query = query.Where("products.category_id = ?", *params.CategoryID)
	}
	return query
}

// List reads through productRow so rows with missing optional columns are
// defaulted rather than dropped.
func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}

	var total int64
	if err := r.base(ctx, params).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err)
	}

	params.Pagination.Validate()
	var rows []productRow
	err := r.base(ctx, params).
		Select(productColumns).
		Order(orderClause(params.SortBy, params.SortOrder, productSortColumns, "products.name ASC")).
		Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, wrapDBError(err)
	}

	products := make([]entity.Product, len(rows))
	for i, row := range rows {
		products[i] = row.toEntity()
	}
	return products, total, nil
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) domainRepo.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return wrapDBError(r.db.WithContext(ctx).Omit("Tenant").Create(category).Error)
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	return firstOrNil[entity.Category](r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Where("id = ?", id))
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return firstOrNil[entity.Category](r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Where("slug = ?", slug))
}

func (r *categoryRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Category, int64, error) {
	var categories []entity.Category
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Category{}).Scopes(TenantScope(ctx))
	if search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", likePattern(search))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err)
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&categories).Error

	return categories, total, wrapDBError(err)
}
