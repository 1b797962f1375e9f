package collection

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/shared"
)

// DebtorType represents the kind of debtor
type DebtorType string

const (
	DebtorTypeIndividual DebtorType = "INDIVIDUAL"
	DebtorTypeCompany    DebtorType = "COMPANY"
)

// IsValid returns true if the debtor type is defined
func (t DebtorType) IsValid() bool {
	return t == DebtorTypeIndividual || t == DebtorTypeCompany
}

// Debtor represents the person or company a case is opened against.
// TotalDebt and OpenCases are denormalized aggregates over the debtor's
// cases; they are only ever mutated inside the same atomic unit as the
// triggering case mutation and are periodically reconciled against the
// case table.
type Debtor struct {
	shared.TenantAggregateRoot
	Name       string          `gorm:"type:varchar(200);not null"`
	Type       DebtorType      `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'"`
	Email      string          `gorm:"type:varchar(200);index"`
	Phone      string          `gorm:"type:varchar(50)"`
	Street     string          `gorm:"type:varchar(200)"`
	PostalCode string          `gorm:"type:varchar(20)"`
	City       string          `gorm:"type:varchar(100)"`
	Country    string          `gorm:"type:varchar(100);default:'Deutschland'"`
	TotalDebt  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OpenCases  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Debtor) TableName() string {
	return "debtors"
}

// NewDebtor creates a new debtor with required fields
func NewDebtor(tenantID uuid.UUID, name string, debtorType DebtorType) (*Debtor, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Debtor name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Debtor name cannot exceed 200 characters")
	}
	if !debtorType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Debtor type must be INDIVIDUAL or COMPANY")
	}

	return &Debtor{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Type:                debtorType,
		TotalDebt:           decimal.Zero,
		OpenCases:           0,
	}, nil
}

// SetContact sets the debtor's contact data
func (d *Debtor) SetContact(email, phone string) {
	d.Email = email
	d.Phone = phone
	d.UpdatedAt = time.Now()
}

// SetAddress sets the debtor's postal address
func (d *Debtor) SetAddress(street, postalCode, city, country string) {
	d.Street = street
	d.PostalCode = postalCode
	d.City = city
	if country != "" {
		d.Country = country
	}
	d.UpdatedAt = time.Now()
}

// ApplyCaseOpened records a newly opened case against the debtor
func (d *Debtor) ApplyCaseOpened(total decimal.Decimal) {
	d.TotalDebt = d.TotalDebt.Add(total)
	d.OpenCases++
	d.UpdatedAt = time.Now()
}

// ApplyCaseRemoved reverses the aggregate effect of a deleted open case
func (d *Debtor) ApplyCaseRemoved(total decimal.Decimal) {
	d.TotalDebt = d.TotalDebt.Sub(total)
	if d.OpenCases > 0 {
		d.OpenCases--
	}
	d.UpdatedAt = time.Now()
}

// ApplyCaseTotalDelta adjusts the total debt after a case's claim changed
func (d *Debtor) ApplyCaseTotalDelta(delta decimal.Decimal) {
	if delta.IsZero() {
		return
	}
	d.TotalDebt = d.TotalDebt.Add(delta)
	d.UpdatedAt = time.Now()
}

// ApplyCaseClosed records a case entering a closure status. Open cases
// always shrink by one; the recorded debt shrinks only when the claim was
// settled (PAID/SETTLED), not when it was written off.
func (d *Debtor) ApplyCaseClosed(total decimal.Decimal, reducesDebt bool) {
	if d.OpenCases > 0 {
		d.OpenCases--
	}
	if reducesDebt {
		d.TotalDebt = d.TotalDebt.Sub(total)
	}
	d.UpdatedAt = time.Now()
}
