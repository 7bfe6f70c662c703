package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotebuilder-api/internal/application/service"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/dto/request"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/dto/response"
)

// DocumentHandler serves the rendered quote and its download and send actions
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Render returns the display model of a quote
func (h *DocumentHandler) Render(c *gin.Context) {
	id, ok := parseID(c, "id", "quote")
	if !ok {
		return
	}

	doc, err := h.documentService.Render(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote document rendered", doc)
}

// Download streams the quote as a file attachment. The quote is not changed.
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := parseID(c, "id", "quote")
	if !ok {
		return
	}

	var req request.DownloadRequest
	if !bindQuery(c, &req) {
		return
	}
	if req.Format == "" {
		req.Format = service.FormatPDF
	}

	file, err := h.documentService.Download(c.Request.Context(), id, req.Format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(200, file.ContentType, file.Content)
}

// Send emails the quote to its customer and marks a draft as sent
func (h *DocumentHandler) Send(c *gin.Context) {
	id, ok := parseID(c, "id", "quote")
	if !ok {
		return
	}

	quote, err := h.documentService.Send(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote sent successfully", quote)
}
