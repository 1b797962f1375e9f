package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/inkasso/backend/internal/application/identity"
)

// TenantHandler handles creditor tenant endpoints
type TenantHandler struct {
	BaseHandler
	tenantService *appidentity.TenantService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *appidentity.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// RegisterRoutes registers the tenant routes
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/tenants")
	{
		tenants.POST("", h.Create)
		tenants.GET("/:id", h.GetByID)
		tenants.DELETE("/:id", h.Deactivate)
	}
}

// Create registers a new creditor tenant
func (h *TenantHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req appidentity.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid tenant request")
		return
	}

	response, err := h.tenantService.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// GetByID returns a tenant visible to the caller
func (h *TenantHandler) GetByID(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	tenantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.tenantService.GetByID(c.Request.Context(), caller, tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Deactivate marks a tenant as inactive
func (h *TenantHandler) Deactivate(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	tenantID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.tenantService.Deactivate(c.Request.Context(), caller, tenantID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
