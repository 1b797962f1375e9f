package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/domain/shared/valueobject"
)

// CaseService handles the lifecycle of collection cases. Every operation
// takes the resolved caller and enforces the caller's access scope before
// touching tenant data; mutations go through the repository unit of work so
// the case write, the debtor aggregates and the audit trail move together.
type CaseService struct {
	caseRepo    collection.CaseRepository
	historyRepo collection.CaseHistoryRepository
	debtorRepo  collection.DebtorRepository
	tenantRepo  identity.TenantRepository
	userRepo    identity.UserRepository
}

// NewCaseService creates a new CaseService
func NewCaseService(
	caseRepo collection.CaseRepository,
	historyRepo collection.CaseHistoryRepository,
	debtorRepo collection.DebtorRepository,
	tenantRepo identity.TenantRepository,
	userRepo identity.UserRepository,
) *CaseService {
	return &CaseService{
		caseRepo:    caseRepo,
		historyRepo: historyRepo,
		debtorRepo:  debtorRepo,
		tenantRepo:  tenantRepo,
		userRepo:    userRepo,
	}
}

// validateAgent ensures the referenced user exists and works cases
func (s *CaseService) validateAgent(ctx context.Context, agentID uuid.UUID) error {
	agent, err := s.userRepo.FindByID(ctx, agentID)
	if err != nil {
		return shared.NewDomainError("INVALID_AGENT", "Referenced agent does not exist")
	}
	if agent.Role != identity.RoleAgent || !agent.IsActive {
		return shared.NewDomainError("INVALID_AGENT", "Referenced user is not an active agent")
	}
	return nil
}

// Create opens a new case against a debtor. The debtor must exist in the
// target tenant and the invoice number must be unique within it. The new
// case is immediately counted into the debtor's aggregates.
func (s *CaseService) Create(ctx context.Context, caller identity.Caller, req CreateCaseRequest) (*CaseResponse, error) {
	if !caller.Scope().Allows(req.TenantID) {
		return nil, shared.ErrForbidden
	}

	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant has been deactivated")
	}

	debtor, err := s.debtorRepo.FindByID(ctx, req.DebtorID)
	if err != nil {
		return nil, err
	}
	if debtor.TenantID != req.TenantID {
		return nil, shared.NewDomainError("INVALID_DEBTOR", "Debtor does not belong to this tenant")
	}

	exists, err := s.caseRepo.ExistsByInvoiceNumber(ctx, req.TenantID, req.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A case with this invoice number already exists")
	}

	costs := decimal.Zero
	if req.Costs != nil {
		costs = *req.Costs
	}
	interest := decimal.Zero
	if req.Interest != nil {
		interest = *req.Interest
	}

	newCase := collection.NewCase
	if req.Draft {
		newCase = collection.NewDraftCase
	}
	c, err := newCase(req.TenantID, req.DebtorID, req.InvoiceNumber,
		req.InvoiceDate, req.DueDate, req.Principal, costs, interest,
		valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}
	c.SetCreatedBy(caller.UserID)

	if req.AgentID != nil {
		if err := s.validateAgent(ctx, *req.AgentID); err != nil {
			return nil, err
		}
		if err := c.AssignAgent(*req.AgentID); err != nil {
			return nil, err
		}
	}

	debtor.ApplyCaseOpened(c.TotalAmount())

	entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionCreated,
		fmt.Sprintf("Case created for invoice %s with status %s", c.InvoiceNumber, c.Status),
		caller.UserID, caller.DisplayName)
	if err != nil {
		return nil, err
	}

	if err := s.caseRepo.CreateWithHistory(ctx, c, debtor, entry); err != nil {
		return nil, err
	}

	response := ToCaseResponse(c)
	return &response, nil
}

// GetByID retrieves a case visible to the caller. Cases outside the
// caller's scope are rejected.
func (s *CaseService) GetByID(ctx context.Context, caller identity.Caller, caseID uuid.UUID) (*CaseResponse, error) {
	c, err := s.findVisibleCase(ctx, caller, caseID)
	if err != nil {
		return nil, err
	}

	response := ToCaseResponse(c)
	return &response, nil
}

// List retrieves cases within the caller's scope with filtering and pagination
func (s *CaseService) List(ctx context.Context, caller identity.Caller, filter CaseListFilter) (*shared.Paginated[CaseListResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	scope := caller.Scope()
	if scope.MatchesNothing() {
		result := shared.NewPaginated([]CaseListResponse{}, 0, filter.Page, filter.PageSize)
		return &result, nil
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
		domainFilter.OrderDir = "desc"
	}
	if filter.TenantID != nil {
		if !scope.Allows(*filter.TenantID) {
			return nil, shared.ErrForbidden
		}
		domainFilter.Filters["tenant_id"] = *filter.TenantID
	}
	if filter.DebtorID != nil {
		domainFilter.Filters["debtor_id"] = *filter.DebtorID
	}
	if filter.AgentID != nil {
		domainFilter.Filters["agent_id"] = *filter.AgentID
	}
	if filter.Status != "" {
		status := collection.CaseStatus(filter.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown case status %s", filter.Status))
		}
		domainFilter.Filters["status"] = status
	}
	if filter.DueOnly {
		domainFilter.Filters["next_action_before"] = time.Now()
	}

	cases, err := s.caseRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.caseRepo.Count(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToCaseListResponses(cases), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update modifies a case's claim amounts, agent assignment, court data or
// analysis. Closed cases are frozen. A changed claim total is propagated to
// the debtor's recorded debt within the same atomic unit as the case write.
func (s *CaseService) Update(ctx context.Context, caller identity.Caller, caseID uuid.UUID, req UpdateCaseRequest) (*CaseResponse, error) {
	c, err := s.findVisibleCase(ctx, caller, caseID)
	if err != nil {
		return nil, err
	}
	if c.IsClosed() {
		return nil, shared.NewDomainError("CASE_CLOSED", "Closed cases cannot be modified")
	}

	oldTotal := c.TotalAmount()

	if req.Principal != nil || req.Costs != nil || req.Interest != nil {
		principal := c.PrincipalAmount
		costs := c.Costs
		interest := c.Interest
		if req.Principal != nil {
			principal = *req.Principal
		}
		if req.Costs != nil {
			costs = *req.Costs
		}
		if req.Interest != nil {
			interest = *req.Interest
		}
		if err := c.UpdateAmounts(principal, costs, interest); err != nil {
			return nil, err
		}
	}

	if req.AgentID != nil {
		if err := s.validateAgent(ctx, *req.AgentID); err != nil {
			return nil, err
		}
		if err := c.AssignAgent(*req.AgentID); err != nil {
			return nil, err
		}
	} else if req.UnassignAgent {
		c.UnassignAgent()
	}

	if req.CompetentCourt != nil || req.CourtFileNumber != nil {
		court := c.CompetentCourt
		fileNumber := c.CourtFileNumber
		if req.CompetentCourt != nil {
			court = *req.CompetentCourt
		}
		if req.CourtFileNumber != nil {
			fileNumber = *req.CourtFileNumber
		}
		c.SetCourtData(court, fileNumber)
	}

	if req.Analysis != nil {
		c.SetAnalysis(*req.Analysis)
	}

	// the debtor aggregate only moves when the claim total moved
	var debtor *collection.Debtor
	delta := c.TotalAmount().Sub(oldTotal)
	if !delta.IsZero() {
		debtor, err = s.debtorRepo.FindByID(ctx, c.DebtorID)
		if err != nil {
			return nil, err
		}
		debtor.ApplyCaseTotalDelta(delta)
	}

	entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionUpdated,
		fmt.Sprintf("Case updated, claim total %s %s", c.TotalAmount(), c.Currency),
		caller.UserID, caller.DisplayName)
	if err != nil {
		return nil, err
	}

	if err := s.caseRepo.SaveWithHistory(ctx, c, debtor, entry); err != nil {
		return nil, err
	}

	response := ToCaseResponse(c)
	return &response, nil
}

// Advance moves a case to a new workflow status. Re-submitting the current
// status is an idempotent no-op that writes nothing. A transition into a
// closure status updates the debtor's aggregates in the same atomic unit.
func (s *CaseService) Advance(ctx context.Context, caller identity.Caller, caseID uuid.UUID, req AdvanceCaseRequest) (*CaseResponse, error) {
	c, err := s.findVisibleCase(ctx, caller, caseID)
	if err != nil {
		return nil, err
	}

	newStatus := collection.CaseStatus(req.Status)
	if !newStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown case status %s", req.Status))
	}

	oldStatus := c.Status
	changed, err := c.AdvanceTo(newStatus, time.Now())
	if err != nil {
		return nil, err
	}
	if !changed {
		response := ToCaseResponse(c)
		return &response, nil
	}

	var debtor *collection.Debtor
	if newStatus.IsClosure() {
		debtor, err = s.debtorRepo.FindByID(ctx, c.DebtorID)
		if err != nil {
			return nil, err
		}
		debtor.ApplyCaseClosed(c.TotalAmount(), newStatus.ReducesDebt())
	}

	entry, err := collection.NewStatusChangeHistory(c.ID, oldStatus, newStatus, req.Note,
		caller.UserID, caller.DisplayName)
	if err != nil {
		return nil, err
	}

	if err := s.caseRepo.SaveWithHistory(ctx, c, debtor, entry); err != nil {
		return nil, err
	}

	response := ToCaseResponse(c)
	return &response, nil
}

// AllowedTransitions returns the statuses the case may move to next
func (s *CaseService) AllowedTransitions(ctx context.Context, caller identity.Caller, caseID uuid.UUID) (*AllowedTransitionsResponse, error) {
	c, err := s.findVisibleCase(ctx, caller, caseID)
	if err != nil {
		return nil, err
	}

	allowed := collection.AllowedTransitions(c.Status)
	names := make([]string, 0, len(allowed))
	for _, status := range allowed {
		names = append(names, string(status))
	}
	return &AllowedTransitionsResponse{Status: string(c.Status), Allowed: names}, nil
}

// Delete removes a case that has not yet entered the dunning run. The
// debtor's aggregates are reversed and the deletion is recorded in the
// audit trail within the same atomic unit.
func (s *CaseService) Delete(ctx context.Context, caller identity.Caller, caseID uuid.UUID) error {
	c, err := s.findVisibleCase(ctx, caller, caseID)
	if err != nil {
		return err
	}
	if !c.IsDeletable() {
		return shared.NewDomainError("CANNOT_DELETE",
			fmt.Sprintf("Cases in status %s cannot be deleted", c.Status))
	}

	debtor, err := s.debtorRepo.FindByID(ctx, c.DebtorID)
	if err != nil {
		return err
	}
	debtor.ApplyCaseRemoved(c.TotalAmount())

	entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionDeleted,
		fmt.Sprintf("Case for invoice %s deleted", c.InvoiceNumber),
		caller.UserID, caller.DisplayName)
	if err != nil {
		return err
	}

	return s.caseRepo.DeleteWithHistory(ctx, c, debtor, entry)
}

// GetHistory returns the audit trail of a case visible to the caller
func (s *CaseService) GetHistory(ctx context.Context, caller identity.Caller, caseID uuid.UUID) ([]CaseHistoryResponse, error) {
	if _, err := s.findVisibleCase(ctx, caller, caseID); err != nil {
		return nil, err
	}

	entries, err := s.historyRepo.FindByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return ToCaseHistoryResponses(entries), nil
}

// findVisibleCase loads a case and rejects the access with FORBIDDEN when
// the caller's scope does not cover its tenant.
func (s *CaseService) findVisibleCase(ctx context.Context, caller identity.Caller, caseID uuid.UUID) (*collection.Case, error) {
	c, err := s.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !caller.Scope().Allows(c.TenantID) {
		return nil, shared.ErrForbidden
	}
	return c, nil
}
