package shared

import (
	"github.com/google/uuid"
)

// AccessScope bounds the visibility of tenant-scoped records for a caller.
// It is used both as a single-record check (Allows) and as a list-query
// predicate (repositories translate it into a tenant_id restriction), so the
// same rule is enforced identically in reads and per-record operations.
type AccessScope struct {
	All       bool
	TenantIDs []uuid.UUID
}

// UnrestrictedScope returns a scope matching every tenant
func UnrestrictedScope() AccessScope {
	return AccessScope{All: true}
}

// TenantScope returns a scope restricted to the given tenants
func TenantScope(tenantIDs ...uuid.UUID) AccessScope {
	return AccessScope{TenantIDs: tenantIDs}
}

// EmptyScope returns a scope that matches nothing
func EmptyScope() AccessScope {
	return AccessScope{}
}

// Allows returns true if records of the given tenant are visible
func (s AccessScope) Allows(tenantID uuid.UUID) bool {
	if s.All {
		return true
	}
	for _, id := range s.TenantIDs {
		if id == tenantID {
			return true
		}
	}
	return false
}

// MatchesNothing returns true if no record can satisfy the scope
func (s AccessScope) MatchesNothing() bool {
	return !s.All && len(s.TenantIDs) == 0
}
