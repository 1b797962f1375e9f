package collection

import (
	"context"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/shared"
)

// CaseRepository defines persistence operations for collection cases.
// The *WithHistory methods execute the case write, the debtor aggregate
// update and the audit trail append as one atomic unit; partial application
// of only some of these writes is a correctness bug.
type CaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Case, error)
	FindAll(ctx context.Context, scope shared.AccessScope, filter shared.Filter) ([]Case, error)
	Count(ctx context.Context, scope shared.AccessScope, filter shared.Filter) (int64, error)
	FindByDebtor(ctx context.Context, debtorID uuid.UUID) ([]Case, error)
	ExistsByInvoiceNumber(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (bool, error)

	// CreateWithHistory inserts the case, applies the debtor aggregate
	// change and appends the audit entry atomically.
	CreateWithHistory(ctx context.Context, c *Case, debtor *Debtor, entry *CaseHistory) error

	// SaveWithHistory persists case changes with an optimistic version
	// check, applies the debtor aggregate change (debtor may be nil when
	// the claim total did not change) and appends the audit entry
	// atomically.
	SaveWithHistory(ctx context.Context, c *Case, debtor *Debtor, entry *CaseHistory) error

	// DeleteWithHistory removes the case, reverses the debtor aggregate
	// and appends the audit entry atomically.
	DeleteWithHistory(ctx context.Context, c *Case, debtor *Debtor, entry *CaseHistory) error
}

// CaseHistoryRepository reads the append-only audit trail of a case.
// Entries are written exclusively through the CaseRepository unit of work.
type CaseHistoryRepository interface {
	FindByCaseID(ctx context.Context, caseID uuid.UUID) ([]CaseHistory, error)
}

// DebtorRepository defines persistence operations for debtors
type DebtorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Debtor, error)
	FindAll(ctx context.Context, scope shared.AccessScope, filter shared.Filter) ([]Debtor, error)
	Count(ctx context.Context, scope shared.AccessScope, filter shared.Filter) (int64, error)
	Save(ctx context.Context, debtor *Debtor) error
}
