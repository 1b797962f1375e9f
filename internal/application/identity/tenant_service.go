package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
)

// TenantService handles creditor tenant administration
type TenantService struct {
	tenantRepo identity.TenantRepository
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo identity.TenantRepository) *TenantService {
	return &TenantService{tenantRepo: tenantRepo}
}

// Create registers a new creditor tenant
func (s *TenantService) Create(ctx context.Context, caller identity.Caller, req CreateTenantRequest) (*TenantResponse, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, shared.ErrForbidden
	}

	tenant, err := identity.NewTenant(req.Name)
	if err != nil {
		return nil, err
	}
	if req.ContactEmail != "" || req.ContactPhone != "" {
		tenant.SetContact(req.ContactEmail, req.ContactPhone)
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}

// GetByID retrieves a tenant visible to the caller
func (s *TenantService) GetByID(ctx context.Context, caller identity.Caller, tenantID uuid.UUID) (*TenantResponse, error) {
	if !caller.Scope().Allows(tenantID) {
		return nil, shared.ErrForbidden
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}

// Deactivate marks a tenant as inactive
func (s *TenantService) Deactivate(ctx context.Context, caller identity.Caller, tenantID uuid.UUID) error {
	if caller.Role != identity.RoleAdmin {
		return shared.ErrForbidden
	}

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	tenant.Deactivate()

	return s.tenantRepo.Save(ctx, tenant)
}
