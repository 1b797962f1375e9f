package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/shared"
)

var caseOrderColumns = map[string]bool{
	"created_at":       true,
	"updated_at":       true,
	"due_date":         true,
	"invoice_number":   true,
	"next_action_date": true,
	"status":           true,
}

// GormCaseRepository implements collection.CaseRepository using GORM.
// The *WithHistory methods run the case write, the debtor aggregate update
// and the audit entry insert inside one database transaction.
type GormCaseRepository struct {
	db *gorm.DB
}

// NewGormCaseRepository creates a new GormCaseRepository
func NewGormCaseRepository(db *gorm.DB) *GormCaseRepository {
	return &GormCaseRepository{db: db}
}

// FindByID retrieves a case by its ID
func (r *GormCaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*collection.Case, error) {
	var c collection.Case
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindAll retrieves cases visible under the given scope, filtered and paginated
func (r *GormCaseRepository) FindAll(ctx context.Context, scope shared.AccessScope, filter shared.Filter) ([]collection.Case, error) {
	var cases []collection.Case

	query := applyScope(r.db.WithContext(ctx).Model(&collection.Case{}), scope)
	query = applyCaseFilters(query, filter)
	query = applyOrdering(query, filter.OrderBy, filter.OrderDir, caseOrderColumns)
	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

// Count returns the number of cases visible under the given scope and filter
func (r *GormCaseRepository) Count(ctx context.Context, scope shared.AccessScope, filter shared.Filter) (int64, error) {
	var count int64

	query := applyScope(r.db.WithContext(ctx).Model(&collection.Case{}), scope)
	query = applyCaseFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByDebtor retrieves all cases opened against a debtor, newest first
func (r *GormCaseRepository) FindByDebtor(ctx context.Context, debtorID uuid.UUID) ([]collection.Case, error) {
	var cases []collection.Case
	err := r.db.WithContext(ctx).
		Where("debtor_id = ?", debtorID).
		Order("created_at desc").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

// ExistsByInvoiceNumber checks whether the tenant already holds a case for
// this invoice number
func (r *GormCaseRepository) ExistsByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&collection.Case{}).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, invoiceNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateWithHistory inserts the case, updates the debtor aggregate and
// appends the audit entry atomically
func (r *GormCaseRepository) CreateWithHistory(ctx context.Context, c *collection.Case, debtor *collection.Debtor, entry *collection.CaseHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if err := updateDebtorWithLock(tx, debtor); err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

// SaveWithHistory persists case changes with an optimistic version check,
// updates the debtor aggregate (nil when the claim total did not move) and
// appends the audit entry atomically
func (r *GormCaseRepository) SaveWithHistory(ctx context.Context, c *collection.Case, debtor *collection.Debtor, entry *collection.CaseHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		expected := c.Version
		c.IncrementVersion()

		result := tx.Model(&collection.Case{}).
			Where("id = ? AND version = ?", c.ID, expected).
			Select("*").
			Omit("id", "created_at").
			Updates(c)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if debtor != nil {
			if err := updateDebtorWithLock(tx, debtor); err != nil {
				return err
			}
		}
		return tx.Create(entry).Error
	})
}

// DeleteWithHistory removes the case, reverses the debtor aggregate and
// appends the audit entry atomically. The audit entry survives the case
// deletion as the only remaining record of it.
func (r *GormCaseRepository) DeleteWithHistory(ctx context.Context, c *collection.Case, debtor *collection.Debtor, entry *collection.CaseHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND version = ?", c.ID, c.Version).Delete(&collection.Case{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if err := updateDebtorWithLock(tx, debtor); err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

// updateDebtorWithLock writes the debtor aggregate columns guarded by the
// debtor's version, so two concurrent case mutations can never both apply a
// stale aggregate.
func updateDebtorWithLock(tx *gorm.DB, debtor *collection.Debtor) error {
	expected := debtor.Version
	debtor.IncrementVersion()

	result := tx.Model(&collection.Debtor{}).
		Where("id = ? AND version = ?", debtor.ID, expected).
		Select("*").
		Omit("id", "created_at").
		Updates(debtor)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func applyCaseFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "tenant_id":
			query = query.Where("tenant_id = ?", value)
		case "debtor_id":
			query = query.Where("debtor_id = ?", value)
		case "agent_id":
			query = query.Where("agent_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "next_action_before":
			query = query.Where("next_action_date IS NOT NULL AND next_action_date <= ?", value)
		}
	}
	return query
}
