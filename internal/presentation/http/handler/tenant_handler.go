package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/internal/application/service"
	"github.com/sangkips/quotebuilder-api/internal/domain/entity"
	"github.com/sangkips/quotebuilder-api/internal/presentation/http/dto/response"
)

// TenantHandler handles the caller's organization settings
type TenantHandler struct {
	tenantService *service.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// GetCurrentTenant returns the caller's organization with defaults filled in
func (h *TenantHandler) GetCurrentTenant(c *gin.Context) {
	tenant, err := h.tenantService.CurrentTenant(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Organization retrieved successfully", tenant)
}

// UpdateTenant updates the caller's organization name and quoting settings
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	tenantID := GetTenantID(c)
	if tenantID == uuid.Nil {
		response.BadRequest(c, "No active organization")
		return
	}

	var req struct {
		Name     string                 `json:"name" binding:"max=255"`
		Settings *entity.TenantSettings `json:"settings"`
	}
	if !bindJSON(c, &req) {
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), &service.UpdateTenantInput{
		ID:       tenantID,
		Name:     req.Name,
		Settings: req.Settings,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Organization updated successfully", tenant)
}
