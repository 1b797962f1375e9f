package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkasso/backend/internal/domain/collection"
)

// GormCaseHistoryRepository implements collection.CaseHistoryRepository.
// The trail is read-only here; entries are written through the case
// repository's transactional methods.
type GormCaseHistoryRepository struct {
	db *gorm.DB
}

// NewGormCaseHistoryRepository creates a new GormCaseHistoryRepository
func NewGormCaseHistoryRepository(db *gorm.DB) *GormCaseHistoryRepository {
	return &GormCaseHistoryRepository{db: db}
}

// FindByCaseID retrieves the audit trail of a case, newest first
func (r *GormCaseHistoryRepository) FindByCaseID(ctx context.Context, caseID uuid.UUID) ([]collection.CaseHistory, error) {
	var entries []collection.CaseHistory
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
