package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/domain/repository"
	infraRepo "github.com/sangkips/quotebuilder-api/internal/infrastructure/repository"
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
	"github.com/sangkips/quotebuilder-api/pkg/utils"
)

// TenantService handles organization records and their quoting settings
type TenantService struct {
	tenantRepo repository.TenantRepository
	defaults   entity.TenantSettings
}

// NewTenantService creates a new tenant service. defaults fill any setting an
// organization has not configured.
func NewTenantService(tenantRepo repository.TenantRepository, defaults entity.TenantSettings) *TenantService {
	return &TenantService{tenantRepo: tenantRepo, defaults: defaults}
}

// CreateTenantInput represents input for creating a tenant
type CreateTenantInput struct {
	Name     string
	Slug     string
	Settings *entity.TenantSettings
}

// CreateTenant creates a new tenant
func (s *TenantService) CreateTenant(ctx context.Context, input *CreateTenantInput) (*entity.Tenant, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldValidationError("name", "is required")
	}

	slug := input.Slug
	if slug == "" {
		slug = utils.Slugify(name)
	}

	// Check if slug already exists
	existing, err := s.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Tenant slug already exists")
	}

	settings := s.defaults
	if input.Settings != nil {
		settings = input.Settings.WithDefaults(s.defaults)
	}

	tenant := &entity.Tenant{
		Name:     name,
		Slug:     slug,
		Settings: settings,
	}

	if err := s.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	return tenant, nil
}

// GetTenant retrieves a tenant by ID with defaults applied to its settings
func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Organization")
	}
	tenant.Settings = tenant.Settings.WithDefaults(s.defaults)
	return tenant, nil
}

// CurrentTenant returns the organization the request is scoped to
func (s *TenantService) CurrentTenant(ctx context.Context) (*entity.Tenant, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}
	return s.GetTenant(ctx, tenantID)
}

// CurrentSettings returns the quoting settings of the request's organization
func (s *TenantService) CurrentSettings(ctx context.Context) (entity.TenantSettings, error) {
	tenant, err := s.CurrentTenant(ctx)
	if err != nil {
		return entity.TenantSettings{}, err
	}
	return tenant.Settings, nil
}

// UpdateTenantInput represents input for updating a tenant
type UpdateTenantInput struct {
	ID       uuid.UUID
	Name     string
	Settings *entity.TenantSettings
}

// UpdateTenant updates a tenant
func (s *TenantService) UpdateTenant(ctx context.Context, input *UpdateTenantInput) (*entity.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, apperror.NewNotFoundError("Organization")
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		tenant.Name = name
	}
	if input.Settings != nil {
		if input.Settings.TaxRate.Valid && input.Settings.TaxRate.Decimal.IsNegative() {
			return nil, apperror.NewFieldValidationError("settings.tax_rate", "must be greater than or equal to 0")
		}
		tenant.Settings = *input.Settings
	}

	if err := s.tenantRepo.Update(ctx, tenant); err != nil {
		return nil, err
	}

	tenant.Settings = tenant.Settings.WithDefaults(s.defaults)
	return tenant, nil
}
