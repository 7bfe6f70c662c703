package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	domainRepo "github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
	"gorm.io/gorm"
)

const customerSearchClause = "(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(COALESCE(company_name, '')) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')"

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return wrapDBError(r.db.WithContext(ctx).Omit("Tenant").Create(customer).Error)
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := firstOrNil[entity.Customer](r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Where("id = ?", id))
	if customer != nil {
		applyCustomerDefaults(customer)
	}
	return customer, err
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	customer, err := firstOrNil[entity.Customer](r.db.WithContext(ctx).Scopes(TenantScope(ctx)).Where("LOWER(email) = LOWER(?)", email))
	if customer != nil {
		applyCustomerDefaults(customer)
	}
	return customer, err
}

func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return wrapDBError(r.db.WithContext(ctx).Omit("Tenant").Save(customer).Error)
}

func (r *customerRepository) base(ctx context.Context, search string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&entity.Customer{}).Scopes(TenantScope(ctx))
	if search != "" {
		pattern := likePattern(search)
		query = query.Where(customerSearchClause, pattern, pattern, pattern)
	}
	return query
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var total int64
	if err := r.base(ctx, search).Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err)
	}

	params.Validate()
	var rows []customerRow
	err := r.base(ctx, search).
		Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, 0, wrapDBError(err)
	}

	return customerRowsToEntities(rows), total, nil
}

func (r *customerRepository) Search(ctx context.Context, query string, limit int) ([]entity.Customer, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []customerRow
	err := r.base(ctx, query).Order("name ASC").Limit(limit).Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err)
	}
	return customerRowsToEntities(rows), nil
}

func customerRowsToEntities(rows []customerRow) []entity.Customer {
	customers := make([]entity.Customer, len(rows))
	for i, row := range rows {
		customers[i] = row.toEntity()
	}
	return customers
}
