package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/shared"
)

var debtorOrderColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"total_debt": true,
	"open_cases": true,
}

// GormDebtorRepository implements collection.DebtorRepository using GORM
type GormDebtorRepository struct {
	db *gorm.DB
}

// NewGormDebtorRepository creates a new GormDebtorRepository
func NewGormDebtorRepository(db *gorm.DB) *GormDebtorRepository {
	return &GormDebtorRepository{db: db}
}

// FindByID retrieves a debtor by its ID
func (r *GormDebtorRepository) FindByID(ctx context.Context, id uuid.UUID) (*collection.Debtor, error) {
	var debtor collection.Debtor
	if err := r.db.WithContext(ctx).First(&debtor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &debtor, nil
}

// FindAll retrieves debtors visible under the given scope, filtered and paginated
func (r *GormDebtorRepository) FindAll(ctx context.Context, scope shared.AccessScope, filter shared.Filter) ([]collection.Debtor, error) {
	var debtors []collection.Debtor

	query := applyScope(r.db.WithContext(ctx).Model(&collection.Debtor{}), scope)
	query = applyDebtorFilters(query, filter)
	query = applyOrdering(query, filter.OrderBy, filter.OrderDir, debtorOrderColumns)
	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Find(&debtors).Error; err != nil {
		return nil, err
	}
	return debtors, nil
}

// Count returns the number of debtors visible under the given scope and filter
func (r *GormDebtorRepository) Count(ctx context.Context, scope shared.AccessScope, filter shared.Filter) (int64, error) {
	var count int64

	query := applyScope(r.db.WithContext(ctx).Model(&collection.Debtor{}), scope)
	query = applyDebtorFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a debtor
func (r *GormDebtorRepository) Save(ctx context.Context, debtor *collection.Debtor) error {
	return r.db.WithContext(ctx).Save(debtor).Error
}

func applyDebtorFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "tenant_id":
			query = query.Where("tenant_id = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "search":
			if s, ok := value.(string); ok && s != "" {
				pattern := "%" + s + "%"
				query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
			}
		}
	}
	return query
}
