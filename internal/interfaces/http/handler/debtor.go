package handler

import (
	"github.com/gin-gonic/gin"

	appcollection "github.com/inkasso/backend/internal/application/collection"
)

// DebtorHandler handles debtor endpoints
type DebtorHandler struct {
	BaseHandler
	debtorService *appcollection.DebtorService
}

// NewDebtorHandler creates a new DebtorHandler
func NewDebtorHandler(debtorService *appcollection.DebtorService) *DebtorHandler {
	return &DebtorHandler{debtorService: debtorService}
}

// RegisterRoutes registers the debtor routes
func (h *DebtorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	debtors := rg.Group("/debtors")
	{
		debtors.POST("", h.Create)
		debtors.GET("", h.List)
		debtors.GET("/:id", h.GetByID)
		debtors.PUT("/:id", h.Update)
		debtors.GET("/:id/cases", h.GetCases)
	}
}

// Create registers a new debtor
func (h *DebtorHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req appcollection.CreateDebtorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid debtor request")
		return
	}

	response, err := h.debtorService.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// List returns the debtors visible to the caller
func (h *DebtorHandler) List(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var filter appcollection.DebtorListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	result, err := h.debtorService.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize, result.TotalPages)
}

// GetByID returns a single debtor with its aggregates
func (h *DebtorHandler) GetByID(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	debtorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.debtorService.GetByID(c.Request.Context(), caller, debtorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Update changes a debtor's contact and address data
func (h *DebtorHandler) Update(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	debtorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appcollection.UpdateDebtorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid update request")
		return
	}

	response, err := h.debtorService.Update(c.Request.Context(), caller, debtorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetCases returns all cases opened against a debtor
func (h *DebtorHandler) GetCases(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	debtorID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	cases, err := h.debtorService.GetCases(c.Request.Context(), caller, debtorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cases)
}
