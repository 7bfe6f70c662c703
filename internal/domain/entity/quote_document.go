package entity

// DocumentHeader holds the issuing organization printed at the top of a quote document.
type DocumentHeader struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
}

// DocumentParty is the customer block of a quote document.
type DocumentParty struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

// DocumentLine is one itemized row with amounts already formatted.
type DocumentLine struct {
	Position    int    `json:"position"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
}

// QuoteDocument is a read-only, display-ready rendering of a quote.
// It is NOT a database entity; it is composed from a hydrated quote on demand.
type QuoteDocument struct {
	Header         DocumentHeader `json:"header"`
	QuoteNumber    string         `json:"quote_number"`
	Title          string         `json:"title"`
	Status         string         `json:"status"`
	IssueDate      string         `json:"issue_date"`
	ValidUntil     string         `json:"valid_until,omitempty"`
	Currency       string         `json:"currency"`
	Customer       DocumentParty  `json:"customer"`
	Lines          []DocumentLine `json:"lines"`
	Subtotal       string         `json:"subtotal"`
	DiscountLabel  string         `json:"discount_label,omitempty"`
	DiscountAmount string         `json:"discount_amount,omitempty"`
	TaxLabel       string         `json:"tax_label"`
	TaxAmount      string         `json:"tax_amount"`
	Total          string         `json:"total"`
	Notes          string         `json:"notes,omitempty"`
}
