package collection

import (
	"context"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
)

// DebtorService handles debtor master data. The denormalized case aggregates
// on the debtor are owned by the case lifecycle and are read-only here.
type DebtorService struct {
	debtorRepo collection.DebtorRepository
	caseRepo   collection.CaseRepository
}

// NewDebtorService creates a new DebtorService
func NewDebtorService(debtorRepo collection.DebtorRepository, caseRepo collection.CaseRepository) *DebtorService {
	return &DebtorService{
		debtorRepo: debtorRepo,
		caseRepo:   caseRepo,
	}
}

// Create registers a new debtor in the target tenant
func (s *DebtorService) Create(ctx context.Context, caller identity.Caller, req CreateDebtorRequest) (*DebtorResponse, error) {
	if !caller.Scope().Allows(req.TenantID) {
		return nil, shared.ErrForbidden
	}

	debtor, err := collection.NewDebtor(req.TenantID, req.Name, collection.DebtorType(req.Type))
	if err != nil {
		return nil, err
	}
	debtor.SetCreatedBy(caller.UserID)

	if req.Email != "" || req.Phone != "" {
		debtor.SetContact(req.Email, req.Phone)
	}
	if req.Street != "" || req.PostalCode != "" || req.City != "" || req.Country != "" {
		debtor.SetAddress(req.Street, req.PostalCode, req.City, req.Country)
	}

	if err := s.debtorRepo.Save(ctx, debtor); err != nil {
		return nil, err
	}

	response := ToDebtorResponse(debtor)
	return &response, nil
}

// GetByID retrieves a debtor visible to the caller
func (s *DebtorService) GetByID(ctx context.Context, caller identity.Caller, debtorID uuid.UUID) (*DebtorResponse, error) {
	debtor, err := s.findVisibleDebtor(ctx, caller, debtorID)
	if err != nil {
		return nil, err
	}

	response := ToDebtorResponse(debtor)
	return &response, nil
}

// GetCases returns the cases recorded against a debtor
func (s *DebtorService) GetCases(ctx context.Context, caller identity.Caller, debtorID uuid.UUID) ([]CaseListResponse, error) {
	if _, err := s.findVisibleDebtor(ctx, caller, debtorID); err != nil {
		return nil, err
	}

	cases, err := s.caseRepo.FindByDebtor(ctx, debtorID)
	if err != nil {
		return nil, err
	}
	return ToCaseListResponses(cases), nil
}

// List retrieves debtors within the caller's scope with filtering and pagination
func (s *DebtorService) List(ctx context.Context, caller identity.Caller, filter DebtorListFilter) (*shared.Paginated[DebtorResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	scope := caller.Scope()
	if scope.MatchesNothing() {
		result := shared.NewPaginated([]DebtorResponse{}, 0, filter.Page, filter.PageSize)
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
		domainFilter.OrderBy = "name"
		domainFilter.OrderDir = "asc"
	}
	if filter.TenantID != nil {
		if !scope.Allows(*filter.TenantID) {
			return nil, shared.ErrForbidden
		}
		domainFilter.Filters["tenant_id"] = *filter.TenantID
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = collection.DebtorType(filter.Type)
	}
	if filter.Search != "" {
		domainFilter.Filters["search"] = filter.Search
	}

	debtors, err := s.debtorRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.debtorRepo.Count(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToDebtorResponses(debtors), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Update modifies a debtor's contact and address data
func (s *DebtorService) Update(ctx context.Context, caller identity.Caller, debtorID uuid.UUID, req UpdateDebtorRequest) (*DebtorResponse, error) {
	debtor, err := s.findVisibleDebtor(ctx, caller, debtorID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil || req.Phone != nil {
		email := debtor.Email
		phone := debtor.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		debtor.SetContact(email, phone)
	}

	if req.Street != nil || req.PostalCode != nil || req.City != nil || req.Country != nil {
		street := debtor.Street
		postalCode := debtor.PostalCode
		city := debtor.City
		country := debtor.Country
		if req.Street != nil {
			street = *req.Street
		}
		if req.PostalCode != nil {
			postalCode = *req.PostalCode
		}
		if req.City != nil {
			city = *req.City
		}
		if req.Country != nil {
			country = *req.Country
		}
		debtor.SetAddress(street, postalCode, city, country)
	}

	if err := s.debtorRepo.Save(ctx, debtor); err != nil {
		return nil, err
	}

	response := ToDebtorResponse(debtor)
	return &response, nil
}

func (s *DebtorService) findVisibleDebtor(ctx context.Context, caller identity.Caller, debtorID uuid.UUID) (*collection.Debtor, error) {
	debtor, err := s.debtorRepo.FindByID(ctx, debtorID)
	if err != nil {
		return nil, err
	}
	if !caller.Scope().Allows(debtor.TenantID) {
		return nil, shared.ErrForbidden
	}
	return debtor, nil
}
