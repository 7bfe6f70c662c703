package wizard

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CustomerSelection is either an ExistingCustomer or an AdhocCustomer.
type CustomerSelection interface {
	isCustomerSelection()
	// Complete reports whether the selection is enough to leave the customer step.
	Complete() bool
}

// ExistingCustomer references a customer already in the catalog.
type ExistingCustomer struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
}

func (ExistingCustomer) isCustomerSelection() {}

func (c ExistingCustomer) Complete() bool { return c.ID != uuid.Nil }

// AdhocCustomer holds customer fields typed directly into the wizard. The
// customer is created at commit time.
type AdhocCustomer struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

func (AdhocCustomer) isCustomerSelection() {}

func (c AdhocCustomer) Complete() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.Email) != ""
}

const (
	selectionExisting = "existing"
	selectionAdhoc    = "adhoc"
)

type selectionEnvelope struct {
	Kind     string            `json:"kind"`
	Existing *ExistingCustomer `json:"existing,omitempty"`
	Adhoc    *AdhocCustomer    `json:"adhoc,omitempty"`
}

func encodeSelection(sel CustomerSelection) *selectionEnvelope {
	switch s := sel.(type) {
	case ExistingCustomer:
		return &selectionEnvelope{Kind: selectionExisting, Existing: &s}
	case AdhocCustomer:
		return &selectionEnvelope{Kind: selectionAdhoc, Adhoc: &s}
	default:
		return nil
	}
}

func decodeSelection(env *selectionEnvelope) (CustomerSelection, error) {
	if env == nil {
		return nil, nil
	}
	switch env.Kind {
	case selectionExisting:
		if env.Existing == nil {
			return nil, fmt.Errorf("customer selection %q has no payload", env.Kind)
		}
		return *env.Existing, nil
	case selectionAdhoc:
		if env.Adhoc == nil {
			return nil, fmt.Errorf("customer selection %q has no payload", env.Kind)
		}
		return *env.Adhoc, nil
	default:
		return nil, fmt.Errorf("unknown customer selection kind %q", env.Kind)
	}
}
