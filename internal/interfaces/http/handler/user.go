package handler

import (
	"github.com/gin-gonic/gin"

	appidentity "github.com/inkasso/backend/internal/application/identity"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	BaseHandler
	userService *appidentity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *appidentity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes registers the user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.GetMe)

	users := rg.Group("/users")
	{
		users.POST("", h.Create)
		users.POST("/:id/tenants", h.AssignTenant)
		users.DELETE("/:id", h.Deactivate)
	}
}

// GetMe returns the caller's own user record
func (h *UserHandler) GetMe(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	response, err := h.userService.GetMe(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Create creates a new user account
func (h *UserHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req appidentity.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid user request")
		return
	}

	response, err := h.userService.Create(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// AssignTenant adds a tenant to an agent's assignment set
func (h *UserHandler) AssignTenant(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req appidentity.AssignTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid assignment request")
		return
	}

	response, err := h.userService.AssignTenant(c.Request.Context(), caller, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Deactivate marks a user as inactive
func (h *UserHandler) Deactivate(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), caller, userID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
