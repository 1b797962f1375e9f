package handler

import (
	"github.com/gin-gonic/gin"

	appcollection "github.com/inkasso/backend/internal/application/collection"
)

// CaseHandler handles collection case endpoints
type CaseHandler struct {
	BaseHandler
	caseService *appcollection.CaseService
}

// NewCaseHandler creates a new CaseHandler
func NewCaseHandler(caseService *appcollection.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// RegisterRoutes registers the case routes
func (h *CaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cases := rg.Group("/cases")
	{
		cases.POST("", h.Create)
		cases.GET("", h.List)
		cases.GET("/:id", h.GetByID)
		cases.PUT("/:id", h.Update)
		cases.DELETE("/:id", h.Delete)
		cases.POST("/:id/advance", h.Advance)
		cases.GET("/:id/transitions", h.AllowedTransitions)
		cases.GET("/:id/history", h.GetHistory)
	}
}

// Create opens a new collection case
func (h *CaseHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req appcollection.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid case request")
		return
	}

	response, err := h.caseService.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// List returns the cases visible to the caller
func (h *CaseHandler) List(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var filter appcollection.CaseListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	result, err := h.caseService.List(c.Request.Context(), caller, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize, result.TotalPages)
}

// GetByID returns a single case
func (h *CaseHandler) GetByID(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.caseService.GetByID(c.Request.Context(), caller, caseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Update changes amounts, assignment, court data or analysis of a case
func (h *CaseHandler) Update(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appcollection.UpdateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid update request")
		return
	}

	response, err := h.caseService.Update(c.Request.Context(), caller, caseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Delete removes a case that has not entered the dunning run
func (h *CaseHandler) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.caseService.Delete(c.Request.Context(), caller, caseID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Advance moves a case to a new workflow status
func (h *CaseHandler) Advance(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appcollection.AdvanceCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid advance request")
		return
	}

	response, err := h.caseService.Advance(c.Request.Context(), caller, caseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// AllowedTransitions lists the statuses the case may move to next
func (h *CaseHandler) AllowedTransitions(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.caseService.AllowedTransitions(c.Request.Context(), caller, caseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetHistory returns the audit trail of a case, newest first
func (h *CaseHandler) GetHistory(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	caseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.caseService.GetHistory(c.Request.Context(), caller, caseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}
