package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/application/service"
	"github.com/sangkips/quotebuilder-api/internal/domain/wizard"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/dto/request"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/dto/response"
)

// WizardHandler exposes the quote builder. Every route acts on one draft
// owned by the calling user.
type WizardHandler struct {
	wizardService *service.WizardService
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(wizardService *service.WizardService) *WizardHandler {
	return &WizardHandler{wizardService: wizardService}
}

// stepResponse reports whether a step change happened
type stepResponse struct {
	Draft *wizard.Draft `json:"draft"`
	Moved bool          `json:"moved"`
}

// Open starts a new draft
func (h *WizardHandler) Open(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	draft, err := h.wizardService.Open(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quote draft opened", draft)
}

// Get returns the current draft
func (h *WizardHandler) Get(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}

	draft, err := h.wizardService.Get(c.Request.Context(), userID, draftID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote draft retrieved", draft)
}

// Close discards the draft
func (h *WizardHandler) Close(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}

	if err := h.wizardService.Close(c.Request.Context(), userID, draftID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetStep navigates between steps. A move the guards refuse still returns
// 200 with moved set to false.
func (h *WizardHandler) SetStep(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}

	var req request.SetStepRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, moved, err := h.wizardService.SetStep(c.Request.Context(), userID, draftID, wizard.Step(req.Step))
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Step changed"
	if !moved {
		message = "Step unchanged"
	}
	response.OK(c, message, stepResponse{Draft: draft, Moved: moved})
}

// SelectCustomer picks an existing customer
func (h *WizardHandler) SelectCustomer(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}

	var req request.SelectCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.wizardService.SelectCustomer(c.Request.Context(), userID, draftID, req.CustomerID)
	h.respond(c, draft, err)
}

// SetCustomCustomer enters customer details by hand
func (h *WizardHandler) SetCustomCustomer(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}

	var req request.CustomCustomerRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.wizardService.SetCustomCustomer(c.Request.Context(), userID, draftID, wizard.AdhocCustomer{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Address:     req.Address,
		City:        req.City,
		PostalCode:  req.PostalCode,
	})
	h.respond(c, draft, err)
}

// AddLine adds a catalog product or a custom line
func (h *WizardHandler) AddLine(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}

	var req request.AddLineRequest
	if !bindJSON(c, &req) {
		return
	}

	var (
		draft *wizard.Draft
		err   error
	)
	if req.ProductID != nil {
		draft, err = h.wizardService.AddProduct(c.Request.Context(), userID, draftID, *req.ProductID)
	} else {
		draft, err = h.wizardService.AddCustomLine(c.Request.Context(), userID, draftID, &service.AddCustomLineInput{
			Description: req.Description,
			Unit:        req.Unit,
			UnitPrice:   req.UnitPrice,
			Quantity:    req.Quantity,
		})
	}
	h.respond(c, draft, err)
}

// UpdateLine edits one field of a line
func (h *WizardHandler) UpdateLine(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}
	lineID, ok := parseID(c, "line_id", "line")
	if !ok {
		return
	}

	var req request.UpdateLineRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.wizardService.UpdateLine(c.Request.Context(), userID, draftID, lineID, wizard.LineField(req.Field), req.Value)
	h.respond(c, draft, err)
}

// RemoveLine deletes a line
func (h *WizardHandler) RemoveLine(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}
	lineID, ok := parseID(c, "line_id", "line")
	if !ok {
		return
	}

	draft, err := h.wizardService.RemoveLine(c.Request.Context(), userID, draftID, lineID)
	h.respond(c, draft, err)
}

// SetPricing sets the global discount and tax rate
func (h *WizardHandler) SetPricing(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}

	var req request.PricingRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.wizardService.SetPricing(c.Request.Context(), userID, draftID, req.DiscountPercent, req.TaxRate)
	h.respond(c, draft, err)
}

// SetDetails sets title, notes and validity
func (h *WizardHandler) SetDetails(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}

	var req request.DetailsRequest
	if !bindJSON(c, &req) {
		return
	}

	draft, err := h.wizardService.SetDetails(c.Request.Context(), userID, draftID, req.Title, req.Notes, req.ValidUntil)
	h.respond(c, draft, err)
}

// Save commits the draft as a quote
func (h *WizardHandler) Save(c *gin.Context) {
	userID, draftID, ok := h.ids(c)
	if !ok {
		return
	}

	var req request.SaveWizardRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	quote, err := h.wizardService.Save(c.Request.Context(), userID, draftID, req.SendImmediately)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Quote saved successfully"
	if req.SendImmediately {
		message = "Quote saved and marked as sent"
	}
	response.Created(c, message, quote)
}

func (h *WizardHandler) ids(c *gin.Context) (userID, draftID uuid.UUID, ok bool) {
	if userID, ok = requireUser(c); !ok {
		return
	}
	draftID, ok = parseID(c, "id", "draft")
	return
}

func (h *WizardHandler) respond(c *gin.Context, draft *wizard.Draft, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quote draft updated", draft)
}
