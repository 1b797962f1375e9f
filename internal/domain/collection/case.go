package collection

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/domain/shared/valueobject"
)

// Case represents a debt collection case aggregate root.
// It carries the claim amounts, the court metadata and the workflow status;
// the status may only change through AdvanceTo, which consults the
// transition table and recomputes the follow-up deadline.
type Case struct {
	shared.TenantAggregateRoot
	DebtorID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	AgentID         *uuid.UUID           `gorm:"type:uuid;index"`
	InvoiceNumber   string               `gorm:"type:varchar(100);not null;uniqueIndex:idx_case_tenant_invoice,priority:2"`
	InvoiceDate     time.Time            `gorm:"not null"`
	DueDate         time.Time            `gorm:"not null"`
	PrincipalAmount decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Costs           decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Interest        decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Currency        valueobject.Currency `gorm:"type:varchar(3);not null;default:'EUR'"`
	Status          CaseStatus           `gorm:"type:varchar(30);not null;default:'NEW';index"`
	NextActionDate  *time.Time           `gorm:"index"` // engine-owned, never set by callers
	CompetentCourt  string               `gorm:"type:varchar(200)"`
	CourtFileNumber string               `gorm:"type:varchar(100)"`
	Analysis        string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Case) TableName() string {
	return "cases"
}

// NewCase creates a new case in status NEW with its deadline computed from
// the workflow table.
func NewCase(tenantID, debtorID uuid.UUID, invoiceNumber string, invoiceDate, dueDate time.Time, principal, costs, interest decimal.Decimal, currency valueobject.Currency) (*Case, error) {
	if debtorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEBTOR", "Debtor ID cannot be empty")
	}
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 100 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 100 characters")
	}
	if err := validateAmounts(principal, costs, interest); err != nil {
		return nil, err
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Unsupported currency %s", currency))
	}
	if dueDate.Before(invoiceDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}

	c := &Case{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DebtorID:            debtorID,
		InvoiceNumber:       invoiceNumber,
		InvoiceDate:         invoiceDate,
		DueDate:             dueDate,
		PrincipalAmount:     principal,
		Costs:               costs,
		Interest:            interest,
		Currency:            currency,
		Status:              StatusNew,
	}
	c.NextActionDate = NextActionDate(c.Status, time.Now())

	return c, nil
}

// NewDraftCase creates a case in DRAFT status. Draft cases are not yet part
// of the active dunning run and may be deleted freely.
func NewDraftCase(tenantID, debtorID uuid.UUID, invoiceNumber string, invoiceDate, dueDate time.Time, principal, costs, interest decimal.Decimal, currency valueobject.Currency) (*Case, error) {
	c, err := NewCase(tenantID, debtorID, invoiceNumber, invoiceDate, dueDate, principal, costs, interest, currency)
	if err != nil {
		return nil, err
	}
	c.Status = StatusDraft
	c.NextActionDate = NextActionDate(c.Status, time.Now())
	return c, nil
}

// TotalAmount returns the derived claim total: principal + costs + interest.
// It is never persisted independently.
func (c *Case) TotalAmount() decimal.Decimal {
	return c.PrincipalAmount.Add(c.Costs).Add(c.Interest)
}

// TotalMoney returns the claim total as a Money value object
func (c *Case) TotalMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(c.TotalAmount(), c.Currency)
	return m
}

// UpdateAmounts replaces the monetary components of the claim
func (c *Case) UpdateAmounts(principal, costs, interest decimal.Decimal) error {
	if err := validateAmounts(principal, costs, interest); err != nil {
		return err
	}
	c.PrincipalAmount = principal
	c.Costs = costs
	c.Interest = interest
	c.UpdatedAt = time.Now()
	return nil
}

// AssignAgent assigns a collection agent to the case
func (c *Case) AssignAgent(agentID uuid.UUID) error {
	if agentID == uuid.Nil {
		return shared.NewDomainError("INVALID_AGENT", "Agent ID cannot be empty")
	}
	c.AgentID = &agentID
	c.UpdatedAt = time.Now()
	return nil
}

// UnassignAgent removes the agent assignment
func (c *Case) UnassignAgent() {
	c.AgentID = nil
	c.UpdatedAt = time.Now()
}

// SetCourtData sets the competent court and the court file number
func (c *Case) SetCourtData(court, fileNumber string) {
	c.CompetentCourt = court
	c.CourtFileNumber = fileNumber
	c.UpdatedAt = time.Now()
}

// SetAnalysis replaces the free-text analysis of the case
func (c *Case) SetAnalysis(text string) {
	c.Analysis = text
	c.UpdatedAt = time.Now()
}

// AdvanceTo moves the case to a new workflow status. Re-applying the current
// status is a no-op and reports changed=false; an illegal transition fails
// with an error naming both statuses. On success the follow-up deadline is
// recomputed from the workflow table.
func (c *Case) AdvanceTo(newStatus CaseStatus, now time.Time) (bool, error) {
	if newStatus == c.Status {
		return false, nil
	}
	if !CanTransition(c.Status, newStatus) {
		return false, shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot transition case from %s to %s", c.Status, newStatus))
	}

	c.Status = newStatus
	c.NextActionDate = NextActionDate(newStatus, now)
	c.UpdatedAt = now
	return true, nil
}

// IsClosed returns true if the case is in a closure status
func (c *Case) IsClosed() bool {
	return c.Status.IsClosure()
}

// IsDeletable returns true while the case has not entered the dunning run.
// Only draft or new cases can be deleted.
func (c *Case) IsDeletable() bool {
	return c.Status == StatusDraft || c.Status == StatusNew
}

func validateAmounts(principal, costs, interest decimal.Decimal) error {
	if principal.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Principal amount cannot be negative")
	}
	if costs.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Costs cannot be negative")
	}
	if interest.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Interest cannot be negative")
	}
	return nil
}
