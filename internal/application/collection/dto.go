package collection

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/collection"
)

// =============================================================================
// Case DTOs
// =============================================================================

// CreateCaseRequest represents a request to open a new collection case
type CreateCaseRequest struct {
	TenantID      uuid.UUID        `json:"tenant_id" binding:"required"`
	DebtorID      uuid.UUID        `json:"debtor_id" binding:"required"`
	InvoiceNumber string           `json:"invoice_number" binding:"required,min=1,max=100"`
	InvoiceDate   time.Time        `json:"invoice_date" binding:"required"`
	DueDate       time.Time        `json:"due_date" binding:"required"`
	Principal     decimal.Decimal  `json:"principal" binding:"required"`
	Costs         *decimal.Decimal `json:"costs"`
	Interest      *decimal.Decimal `json:"interest"`
	Currency      string           `json:"currency" binding:"omitempty,len=3"`
	AgentID       *uuid.UUID       `json:"agent_id"`
	Draft         bool             `json:"draft"`
}

// UpdateCaseRequest represents a request to update a case. Status is not
// part of this request; workflow progress goes through AdvanceCaseRequest.
type UpdateCaseRequest struct {
	Principal       *decimal.Decimal `json:"principal"`
	Costs           *decimal.Decimal `json:"costs"`
	Interest        *decimal.Decimal `json:"interest"`
	AgentID         *uuid.UUID       `json:"agent_id"`
	UnassignAgent   bool             `json:"unassign_agent"`
	CompetentCourt  *string          `json:"competent_court" binding:"omitempty,max=200"`
	CourtFileNumber *string          `json:"court_file_number" binding:"omitempty,max=100"`
	Analysis        *string          `json:"analysis"`
}

// AdvanceCaseRequest represents a request to move a case to a new workflow status
type AdvanceCaseRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=1000"`
}

// CaseResponse represents a case in API responses
type CaseResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	DebtorID        uuid.UUID       `json:"debtor_id"`
	AgentID         *uuid.UUID      `json:"agent_id,omitempty"`
	InvoiceNumber   string          `json:"invoice_number"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	DueDate         time.Time       `json:"due_date"`
	Principal       decimal.Decimal `json:"principal"`
	Costs           decimal.Decimal `json:"costs"`
	Interest        decimal.Decimal `json:"interest"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	NextActionDate  *time.Time      `json:"next_action_date,omitempty"`
	CompetentCourt  string          `json:"competent_court,omitempty"`
	CourtFileNumber string          `json:"court_file_number,omitempty"`
	Analysis        string          `json:"analysis,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// CaseListResponse represents a list item for cases
type CaseListResponse struct {
	ID             uuid.UUID       `json:"id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	DebtorID       uuid.UUID       `json:"debtor_id"`
	AgentID        *uuid.UUID      `json:"agent_id,omitempty"`
	InvoiceNumber  string          `json:"invoice_number"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	NextActionDate *time.Time      `json:"next_action_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CaseListFilter represents filter options for the case list
type CaseListFilter struct {
	TenantID *uuid.UUID `form:"tenant_id"`
	DebtorID *uuid.UUID `form:"debtor_id"`
	AgentID  *uuid.UUID `form:"agent_id"`
	Status   string     `form:"status"`
	DueOnly  bool       `form:"due_only"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CaseHistoryResponse represents an audit trail entry in API responses
type CaseHistoryResponse struct {
	ID        uuid.UUID `json:"id"`
	CaseID    uuid.UUID `json:"case_id"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	ActorID   uuid.UUID `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	CreatedAt time.Time `json:"created_at"`
}

// AllowedTransitionsResponse lists the statuses a case may move to next
type AllowedTransitionsResponse struct {
	Status  string   `json:"status"`
	Allowed []string `json:"allowed"`
}

// ToCaseResponse converts a domain case to a response DTO
func ToCaseResponse(c *collection.Case) CaseResponse {
	return CaseResponse{
		ID:              c.ID,
		TenantID:        c.TenantID,
		DebtorID:        c.DebtorID,
		AgentID:         c.AgentID,
		InvoiceNumber:   c.InvoiceNumber,
		InvoiceDate:     c.InvoiceDate,
		DueDate:         c.DueDate,
		Principal:       c.PrincipalAmount,
		Costs:           c.Costs,
		Interest:        c.Interest,
		TotalAmount:     c.TotalAmount(),
		Currency:        string(c.Currency),
		Status:          string(c.Status),
		NextActionDate:  c.NextActionDate,
		CompetentCourt:  c.CompetentCourt,
		CourtFileNumber: c.CourtFileNumber,
		Analysis:        c.Analysis,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		Version:         c.Version,
	}
}

// ToCaseListResponses converts domain cases to list DTOs
func ToCaseListResponses(cases []collection.Case) []CaseListResponse {
	responses := make([]CaseListResponse, 0, len(cases))
	for i := range cases {
		c := &cases[i]
		responses = append(responses, CaseListResponse{
			ID:             c.ID,
			TenantID:       c.TenantID,
			DebtorID:       c.DebtorID,
			AgentID:        c.AgentID,
			InvoiceNumber:  c.InvoiceNumber,
			TotalAmount:    c.TotalAmount(),
			Currency:       string(c.Currency),
			Status:         string(c.Status),
			NextActionDate: c.NextActionDate,
			CreatedAt:      c.CreatedAt,
		})
	}
	return responses
}

// ToCaseHistoryResponses converts audit entries to response DTOs
func ToCaseHistoryResponses(entries []collection.CaseHistory) []CaseHistoryResponse {
	responses := make([]CaseHistoryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, CaseHistoryResponse{
			ID:        e.ID,
			CaseID:    e.CaseID,
			Action:    string(e.Action),
			Details:   e.Details,
			ActorID:   e.ActorID,
			ActorName: e.ActorName,
			CreatedAt: e.CreatedAt,
		})
	}
	return responses
}

// =============================================================================
// Debtor DTOs
// =============================================================================

// CreateDebtorRequest represents a request to register a new debtor
type CreateDebtorRequest struct {
	TenantID   uuid.UUID `json:"tenant_id" binding:"required"`
	Name       string    `json:"name" binding:"required,min=1,max=200"`
	Type       string    `json:"type" binding:"required,oneof=INDIVIDUAL COMPANY"`
	Email      string    `json:"email" binding:"omitempty,email,max=200"`
	Phone      string    `json:"phone" binding:"max=50"`
	Street     string    `json:"street" binding:"max=200"`
	PostalCode string    `json:"postal_code" binding:"max=20"`
	City       string    `json:"city" binding:"max=100"`
	Country    string    `json:"country" binding:"max=100"`
}

// UpdateDebtorRequest represents a request to update a debtor's master data
type UpdateDebtorRequest struct {
	Email      *string `json:"email" binding:"omitempty,email,max=200"`
	Phone      *string `json:"phone" binding:"omitempty,max=50"`
	Street     *string `json:"street" binding:"omitempty,max=200"`
	PostalCode *string `json:"postal_code" binding:"omitempty,max=20"`
	City       *string `json:"city" binding:"omitempty,max=100"`
	Country    *string `json:"country" binding:"omitempty,max=100"`
}

// DebtorResponse represents a debtor in API responses
type DebtorResponse struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Email      string          `json:"email,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Street     string          `json:"street,omitempty"`
	PostalCode string          `json:"postal_code,omitempty"`
	City       string          `json:"city,omitempty"`
	Country    string          `json:"country,omitempty"`
	TotalDebt  decimal.Decimal `json:"total_debt"`
	OpenCases  int             `json:"open_cases"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DebtorListFilter represents filter options for the debtor list
type DebtorListFilter struct {
	TenantID *uuid.UUID `form:"tenant_id"`
	Type     string     `form:"type" binding:"omitempty,oneof=INDIVIDUAL COMPANY"`
	Search   string     `form:"search"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDebtorResponse converts a domain debtor to a response DTO
func ToDebtorResponse(d *collection.Debtor) DebtorResponse {
	return DebtorResponse{
		ID:         d.ID,
		TenantID:   d.TenantID,
		Name:       d.Name,
		Type:       string(d.Type),
		Email:      d.Email,
		Phone:      d.Phone,
		Street:     d.Street,
		PostalCode: d.PostalCode,
		City:       d.City,
		Country:    d.Country,
		TotalDebt:  d.TotalDebt,
		OpenCases:  d.OpenCases,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// ToDebtorResponses converts domain debtors to response DTOs
func ToDebtorResponses(debtors []collection.Debtor) []DebtorResponse {
	responses := make([]DebtorResponse, 0, len(debtors))
	for i := range debtors {
		responses = append(responses, ToDebtorResponse(&debtors[i]))
	}
	return responses
}
