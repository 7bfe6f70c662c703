package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/application/service"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/domain/enum"
	"github.com/sangkips/quotebuilder-api/internal/domain/repository"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/dto/request"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/dto/response"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
)

// QuoteHandler handles quote lifecycle requests
type QuoteHandler struct {
	quoteService *service.QuoteService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteService *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// List handles listing quotes. status filters on the displayed status, so
// status=expired returns sent or viewed quotes past their validity date.
func (h *QuoteHandler) List(c *gin.Context) {
	var filter request.QuoteFilterRequest
	if !bindQuery(c, &filter) {
		return
	}

	params := &repository.QuoteFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:    filter.Search,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}

	if filter.Status != "" {
		status, err := enum.ParseQuoteStatus(filter.Status)
		if err != nil {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		params.Status = &status
	}

	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		params.CustomerID = &customerID
	}

	result, err := h.quoteService.ListQuotes(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Quotes retrieved successfully", result)
}

// Get handles getting a single quote with its items
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "quote")
	if !ok {
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote retrieved successfully", quote)
}

// Create handles creating a quote directly, without the wizard
func (h *QuoteHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateQuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.CreateQuoteInput{
		UserID:          userID,
		CustomerID:      req.CustomerID,
		Title:           req.Title,
		Status:          enum.QuoteStatusDraft,
		DiscountPercent: req.DiscountPercent,
		TaxRate:         req.TaxRate,
		Notes:           req.Notes,
		ValidUntil:      req.ValidUntil,
		Items:           make([]service.QuoteItemInput, len(req.Items)),
	}
	if req.Status != "" {
		status, err := enum.ParseQuoteStatus(req.Status)
		if err != nil {
			response.BadRequest(c, "Invalid status")
			return
		}
		input.Status = status
	}
	for i, item := range req.Items {
		input.Items[i] = service.QuoteItemInput{
			ProductID:       item.ProductID,
			Description:     item.Description,
			Unit:            item.Unit,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
		}
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quote created successfully", quote)
}

// Delete handles deleting a quote and its items
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "quote")
	if !ok {
		return
	}

	if err := h.quoteService.DeleteQuote(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote deleted successfully", nil)
}

// MarkSent records delivery done outside the system
func (h *QuoteHandler) MarkSent(c *gin.Context) {
	h.transition(c, "Quote marked as sent", h.quoteService.MarkSent)
}

// MarkViewed records that the customer opened the quote
func (h *QuoteHandler) MarkViewed(c *gin.Context) {
	h.transition(c, "Quote marked as viewed", h.quoteService.MarkViewed)
}

// MarkAccepted records the customer's acceptance
func (h *QuoteHandler) MarkAccepted(c *gin.Context) {
	h.transition(c, "Quote accepted", h.quoteService.MarkAccepted)
}

// MarkRejected records the customer's rejection
func (h *QuoteHandler) MarkRejected(c *gin.Context) {
	h.transition(c, "Quote rejected", h.quoteService.MarkRejected)
}

func (h *QuoteHandler) transition(c *gin.Context, message string, apply func(context.Context, uuid.UUID) (*entity.Quote, error)) {
	id, ok := parseID(c, "id", "quote")
	if !ok {
		return
	}

	quote, err := apply(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, quote)
}
