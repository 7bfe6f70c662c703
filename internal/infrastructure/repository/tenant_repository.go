package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	domainRepo "github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"gorm.io/gorm"
)

// Organizations are not tenant-scoped themselves, so these queries never
// apply TenantScope.
type tenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) domainRepo.TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *entity.Tenant) error {
	return wrapDBError(r.db.WithContext(ctx).Create(tenant).Error)
}

func (r *tenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	return firstOrNil[entity.Tenant](r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *tenantRepository) GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	return firstOrNil[entity.Tenant](r.db.WithContext(ctx).Where("slug = ?", slug))
}

// Update writes the name and settings only. The slug is fixed at creation.
func (r *tenantRepository) Update(ctx context.Context, tenant *entity.Tenant) error {
	return wrapDBError(r.db.WithContext(ctx).
		Model(tenant).
		Select("name", "settings", "updated_at").
		Updates(tenant).Error)
}
