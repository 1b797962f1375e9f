package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkasso/backend/internal/domain/shared"
)

// Role represents the access role of a user
type Role string

const (
	// RoleAdmin is the platform-level administrative role with
	// unrestricted visibility across tenants.
	RoleAdmin Role = "ADMIN"
	// RoleClient is the tenant-owner role, restricted to its own tenant.
	RoleClient Role = "CLIENT"
	// RoleAgent is the delegated collection agent role, restricted to the
	// tenants explicitly assigned to the agent.
	RoleAgent Role = "AGENT"
)

// IsValid returns true if the role is defined
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleAgent:
		return true
	}
	return false
}

// Password cost for bcrypt
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// User represents a system user. CLIENT users belong to exactly one tenant
// (TenantID); AGENT users carry a many-to-many tenant assignment set loaded
// by the repository.
type User struct {
	shared.BaseAggregateRoot
	Email             string            `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash      string            `gorm:"type:varchar(100);not null"`
	DisplayName       string            `gorm:"type:varchar(200);not null"`
	Role              Role              `gorm:"type:varchar(20);not null"`
	TenantID          *uuid.UUID        `gorm:"type:uuid;index"` // set for CLIENT users
	TenantAssignments []AgentAssignment `gorm:"foreignKey:UserID"`
	IsActive          bool              `gorm:"not null;default:true"`
	LastLoginAt       *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// AgentAssignment links an AGENT user to a tenant it may work for
type AgentAssignment struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (AgentAssignment) TableName() string {
	return "agent_assignments"
}

// NewUser creates a new active user with a hashed password
func NewUser(email, password, displayName string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Display name cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      string(hash),
		DisplayName:       displayName,
		Role:              role,
		IsActive:          true,
	}, nil
}

// NewClientUser creates a tenant-owner user bound to a single tenant
func NewClientUser(email, password, displayName string, tenantID uuid.UUID) (*User, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	u, err := NewUser(email, password, displayName, RoleClient)
	if err != nil {
		return nil, err
	}
	u.TenantID = &tenantID
	return u, nil
}

// VerifyPassword checks the given password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stores the time of a successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = at
}

// AssignTenant adds a tenant to an agent's assignment set
func (u *User) AssignTenant(tenantID uuid.UUID) error {
	if u.Role != RoleAgent {
		return shared.NewDomainError("INVALID_ROLE", "Only agents carry tenant assignments")
	}
	if tenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	for _, a := range u.TenantAssignments {
		if a.TenantID == tenantID {
			return nil
		}
	}
	u.TenantAssignments = append(u.TenantAssignments, AgentAssignment{
		UserID:    u.ID,
		TenantID:  tenantID,
		CreatedAt: time.Now(),
	})
	u.UpdatedAt = time.Now()
	return nil
}

// AssignedTenantIDs returns the tenant ids an agent works for
func (u *User) AssignedTenantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(u.TenantAssignments))
	for _, a := range u.TenantAssignments {
		ids = append(ids, a.TenantID)
	}
	return ids
}

// Deactivate marks the user as inactive
func (u *User) Deactivate() {
	u.IsActive = false
	u.UpdatedAt = time.Now()
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}
