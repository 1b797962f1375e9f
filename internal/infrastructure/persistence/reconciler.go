package persistence

import (
	"context"

	"gorm.io/gorm"
)

// GormDebtorReconciler recomputes the denormalized debtor aggregates from
// the case table. The aggregates are maintained transactionally on every
// case mutation; this reconciler is the safety net that repairs drift, for
// example after a manual data correction.
type GormDebtorReconciler struct {
	db *gorm.DB
}

// NewGormDebtorReconciler creates a new GormDebtorReconciler
func NewGormDebtorReconciler(db *gorm.DB) *GormDebtorReconciler {
	return &GormDebtorReconciler{db: db}
}

// Open cases are those outside the four terminal statuses. Recorded debt
// drops only when a claim was actually settled, so written-off and
// insolvency cases keep contributing to total_debt.
const reconcileDebtorsSQL = `
UPDATE debtors d
SET total_debt = agg.total_debt,
    open_cases = agg.open_cases,
    updated_at = now(),
    version    = d.version + 1
FROM (
    SELECT d2.id AS debtor_id,
           COALESCE(SUM(
               CASE WHEN c.status NOT IN ('PAID', 'SETTLED')
                    THEN c.principal_amount + c.costs + c.interest
                    ELSE 0 END
           ), 0) AS total_debt,
           COUNT(c.id) FILTER (
               WHERE c.status NOT IN ('PAID', 'SETTLED', 'INSOLVENCY', 'UNCOLLECTIBLE')
           ) AS open_cases
    FROM debtors d2
    LEFT JOIN cases c ON c.debtor_id = d2.id
    GROUP BY d2.id
) agg
WHERE d.id = agg.debtor_id
  AND (d.total_debt <> agg.total_debt OR d.open_cases <> agg.open_cases)
`

// Reconcile rewrites drifted debtor aggregates and returns how many debtors
// were corrected
func (r *GormDebtorReconciler) Reconcile(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(reconcileDebtorsSQL)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
