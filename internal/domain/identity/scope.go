package identity

import (
	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/shared"
)

// Caller is the resolved identity of the requester, supplied by the
// authentication boundary. The core never validates credentials itself.
type Caller struct {
	UserID            uuid.UUID
	DisplayName       string
	Role              Role
	TenantID          *uuid.UUID  // set for CLIENT callers
	AssignedTenantIDs []uuid.UUID // set for AGENT callers
}

// CallerFromUser builds a caller snapshot from a loaded user
func CallerFromUser(u *User) Caller {
	return Caller{
		UserID:            u.ID,
		DisplayName:       u.DisplayName,
		Role:              u.Role,
		TenantID:          u.TenantID,
		AssignedTenantIDs: u.AssignedTenantIDs(),
	}
}

// scopeResolver maps a role to the visibility rule for that role. The
// mapping is data-driven so that adding a role means adding a table entry,
// not another branch.
type scopeResolver func(c Caller) shared.AccessScope

var scopeResolvers = map[Role]scopeResolver{
	RoleAdmin: func(Caller) shared.AccessScope {
		return shared.UnrestrictedScope()
	},
	RoleClient: func(c Caller) shared.AccessScope {
		if c.TenantID == nil {
			return shared.EmptyScope()
		}
		return shared.TenantScope(*c.TenantID)
	},
	RoleAgent: func(c Caller) shared.AccessScope {
		if len(c.AssignedTenantIDs) == 0 {
			return shared.EmptyScope()
		}
		return shared.TenantScope(c.AssignedTenantIDs...)
	},
}

// Scope maps the caller's role and tenant affiliation to the access scope
// governing tenant-scoped records. Unknown roles match nothing.
func (c Caller) Scope() shared.AccessScope {
	resolve, ok := scopeResolvers[c.Role]
	if !ok {
		return shared.EmptyScope()
	}
	return resolve(c)
}
