package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/infrastructure/auth"
)

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued tokens and the authenticated user
type LoginResponse struct {
	Tokens auth.TokenPair `json:"tokens"`
	User   UserResponse   `json:"user"`
}

// RefreshRequest represents a token refresh attempt
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Email       string     `json:"email" binding:"required,email,max=200"`
	Password    string     `json:"password" binding:"required,min=8,max=72"`
	DisplayName string     `json:"display_name" binding:"required,min=1,max=200"`
	Role        string     `json:"role" binding:"required,oneof=ADMIN CLIENT AGENT"`
	TenantID    *uuid.UUID `json:"tenant_id"` // required for CLIENT users
}

// AssignTenantRequest links an agent to a tenant
type AssignTenantRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID                uuid.UUID   `json:"id"`
	Email             string      `json:"email"`
	DisplayName       string      `json:"display_name"`
	Role              string      `json:"role"`
	TenantID          *uuid.UUID  `json:"tenant_id,omitempty"`
	AssignedTenantIDs []uuid.UUID `json:"assigned_tenant_ids,omitempty"`
	IsActive          bool        `json:"is_active"`
	LastLoginAt       *time.Time  `json:"last_login_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
}

// CreateTenantRequest represents a request to register a creditor tenant
type CreateTenantRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email,max=200"`
	ContactPhone string `json:"contact_phone" binding:"omitempty,max=50"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email,omitempty"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToUserResponse converts a domain user to a response DTO
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		DisplayName:       u.DisplayName,
		Role:              string(u.Role),
		TenantID:          u.TenantID,
		AssignedTenantIDs: u.AssignedTenantIDs(),
		IsActive:          u.IsActive,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
	}
}

// ToTenantResponse converts a domain tenant to a response DTO
func ToTenantResponse(t *identity.Tenant) TenantResponse {
	return TenantResponse{
		ID:           t.ID,
		Name:         t.Name,
		ContactEmail: t.ContactEmail,
		ContactPhone: t.ContactPhone,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
	}
}
