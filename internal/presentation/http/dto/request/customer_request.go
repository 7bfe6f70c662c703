package request

// CreateCustomerRequest represents a customer creation request. Name and
// email are checked by the service so that missing fields come back as
// field errors.
type CreateCustomerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	CompanyName *string `json:"company_name"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	PostalCode  *string `json:"postal_code"`
}

// CustomerSearchRequest represents customer search parameters
type CustomerSearchRequest struct {
	Query string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=100"`
}
