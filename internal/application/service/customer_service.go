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
	"github.com/sangkips/quotebuilder-api/pkg/phone"
	"github.com/sangkips/quotebuilder-api/pkg/validator"
)

const defaultSearchLimit = 20

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	validate     *validator.Validator
	phoneRegion  string
}

// NewCustomerService creates a new customer service. phoneRegion is the
// region assumed for phone numbers written without a country code.
func NewCustomerService(customerRepo repository.CustomerRepository, validate *validator.Validator, phoneRegion string) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		validate:     validate,
		phoneRegion:  phoneRegion,
	}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	UserID      uuid.UUID `json:"-"`
	Name        string    `json:"name" validate:"required,max=255"`
	Email       string    `json:"email" validate:"required,email,max=255"`
	Phone       string    `json:"phone" validate:"max=50"`
	CompanyName string    `json:"company_name" validate:"max=255"`
	Address     string    `json:"address"`
	City        string    `json:"city" validate:"max=100"`
	PostalCode  string    `json:"postal_code" validate:"max=20"`
}

// CreateCustomer creates a new customer. Name and a valid email are required.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.ErrTenantRequired
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	customer := &entity.Customer{
		TenantID:    tenantID,
		UserID:      input.UserID,
		Name:        input.Name,
		Email:       input.Email,
		Phone:       optional(phone.NormalizeE164(input.Phone, s.phoneRegion)),
		CompanyName: optional(input.CompanyName),
		Address:     optional(input.Address),
		City:        optional(input.City),
		PostalCode:  optional(input.PostalCode),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists the organization's customers
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	return pagination.Paginate(customers, params, total), nil
}

// FindCustomersMatching returns customers whose name, company or email
// contains query, ignoring case. An empty query matches everyone.
func (s *CustomerService) FindCustomersMatching(ctx context.Context, query string, limit int) ([]entity.Customer, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}
	return s.customerRepo.Search(ctx, strings.TrimSpace(query), limit)
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID          uuid.UUID `json:"-"`
	Name        *string   `json:"name" validate:"omitempty,min=1,max=255"`
	Email       *string   `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string   `json:"phone" validate:"omitempty,max=50"`
	CompanyName *string   `json:"company_name" validate:"omitempty,max=255"`
	Address     *string   `json:"address"`
	City        *string   `json:"city" validate:"omitempty,max=100"`
	PostalCode  *string   `json:"postal_code" validate:"omitempty,max=20"`
}

// UpdateCustomer updates a customer
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}

	customer, err := s.GetCustomer(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldValidationError("name", "is required")
		}
		customer.Name = name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, apperror.NewFieldValidationError("email", "is required")
		}
		customer.Email = email
	}
	if input.Phone != nil {
		customer.Phone = optional(phone.NormalizeE164(*input.Phone, s.phoneRegion))
	}
	if input.CompanyName != nil {
		customer.CompanyName = optional(*input.CompanyName)
	}
	if input.Address != nil {
		customer.Address = optional(*input.Address)
	}
	if input.City != nil {
		customer.City = optional(*input.City)
	}
	if input.PostalCode != nil {
		customer.PostalCode = optional(*input.PostalCode)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

// optional maps blank strings to NULL
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
