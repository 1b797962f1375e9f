package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
)

// UserService handles user administration. All operations require an ADMIN
// caller; tenant visibility never grants user management rights.
type UserService struct {
	userRepo   identity.UserRepository
	tenantRepo identity.TenantRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, tenantRepo identity.TenantRepository) *UserService {
	return &UserService{
		userRepo:   userRepo,
		tenantRepo: tenantRepo,
	}
}

// Create creates a new user account
func (s *UserService) Create(ctx context.Context, caller identity.Caller, req CreateUserRequest) (*UserResponse, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, shared.ErrForbidden
	}

	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	role := identity.Role(req.Role)

	var user *identity.User
	var err error
	if role == identity.RoleClient {
		if req.TenantID == nil {
			return nil, shared.NewDomainError("INVALID_TENANT", "Client users require a tenant")
		}
		if _, err := s.tenantRepo.FindByID(ctx, *req.TenantID); err != nil {
			return nil, err
		}
		user, err = identity.NewClientUser(req.Email, req.Password, req.DisplayName, *req.TenantID)
	} else {
		user, err = identity.NewUser(req.Email, req.Password, req.DisplayName, role)
	}
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// AssignTenant adds a tenant to an agent's assignment set
func (s *UserService) AssignTenant(ctx context.Context, caller identity.Caller, userID uuid.UUID, req AssignTenantRequest) (*UserResponse, error) {
	if caller.Role != identity.RoleAdmin {
		return nil, shared.ErrForbidden
	}

	if _, err := s.tenantRepo.FindByID(ctx, req.TenantID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.AssignTenant(req.TenantID); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Deactivate marks a user as inactive, blocking further logins
func (s *UserService) Deactivate(ctx context.Context, caller identity.Caller, userID uuid.UUID) error {
	if caller.Role != identity.RoleAdmin {
		return shared.ErrForbidden
	}
	if userID == caller.UserID {
		return shared.NewDomainError("INVALID_INPUT", "Cannot deactivate your own account")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	user.Deactivate()

	return s.userRepo.Save(ctx, user)
}

// GetMe returns the caller's own user record
func (s *UserService) GetMe(ctx context.Context, caller identity.Caller) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}
