package persistence

import (
	"gorm.io/gorm"

	"github.com/inkasso/backend/internal/domain/shared"
)

// applyScope translates an access scope into a tenant restriction on the
// query. An unrestricted scope leaves the query untouched; a scope that
// matches nothing yields an always-false predicate so no rows can leak.
func applyScope(query *gorm.DB, scope shared.AccessScope) *gorm.DB {
	if scope.All {
		return query
	}
	if len(scope.TenantIDs) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where("tenant_id IN ?", scope.TenantIDs)
}

// applyOrdering applies a whitelisted ordering to the query. Unknown columns
// fall back to creation time so caller input can never inject SQL.
func applyOrdering(query *gorm.DB, orderBy, orderDir string, allowed map[string]bool) *gorm.DB {
	if !allowed[orderBy] {
		orderBy = "created_at"
	}
	if orderDir != "asc" {
		orderDir = "desc"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyPagination applies page-based limits to the query
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}
