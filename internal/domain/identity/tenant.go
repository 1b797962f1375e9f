package identity

import (
	"strings"
	"time"

	"github.com/inkasso/backend/internal/domain/shared"
)

// Tenant represents a creditor organization (Mandant) on whose behalf
// collection cases are pursued.
type Tenant struct {
	shared.BaseAggregateRoot
	Name         string `gorm:"type:varchar(200);not null"`
	ContactEmail string `gorm:"type:varchar(200)"`
	ContactPhone string `gorm:"type:varchar(50)"`
	IsActive     bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant with required fields
func NewTenant(name string) (*Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		IsActive:          true,
	}, nil
}

// SetContact sets the tenant's contact data
func (t *Tenant) SetContact(email, phone string) {
	t.ContactEmail = email
	t.ContactPhone = phone
	t.UpdatedAt = time.Now()
}

// Deactivate marks the tenant as inactive
func (t *Tenant) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
}
