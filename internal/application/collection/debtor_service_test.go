package collection

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/domain/shared"
)

type debtorServiceFixture struct {
	debtorRepo *MockDebtorRepository
	caseRepo   *MockCaseRepository
	service    *DebtorService
}

func newDebtorServiceFixture() *debtorServiceFixture {
	debtorRepo := new(MockDebtorRepository)
	caseRepo := new(MockCaseRepository)
	return &debtorServiceFixture{
		debtorRepo: debtorRepo,
		caseRepo:   caseRepo,
		service:    NewDebtorService(debtorRepo, caseRepo),
	}
}

func TestDebtorService_Create(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates debtor with contact and address", func(t *testing.T) {
		f := newDebtorServiceFixture()
		f.debtorRepo.On("Save", ctx, mock.AnythingOfType("*collection.Debtor")).Return(nil)

		response, err := f.service.Create(ctx, clientCaller(tenantID), CreateDebtorRequest{
			TenantID:   tenantID,
			Name:       "Acme GmbH",
			Type:       "COMPANY",
			Email:      "buchhaltung@acme.example",
			Street:     "Musterstr. 1",
			PostalCode: "10115",
			City:       "Berlin",
		})
		require.NoError(t, err)

		assert.Equal(t, "Acme GmbH", response.Name)
		assert.Equal(t, "COMPANY", response.Type)
		assert.Equal(t, "Berlin", response.City)
		assert.Equal(t, "Deutschland", response.Country)
		assert.True(t, response.TotalDebt.IsZero())
		f.debtorRepo.AssertExpectations(t)
	})

	t.Run("rejects caller outside the tenant", func(t *testing.T) {
		f := newDebtorServiceFixture()

		_, err := f.service.Create(ctx, clientCaller(uuid.New()), CreateDebtorRequest{
			TenantID: tenantID,
			Name:     "Acme GmbH",
			Type:     "COMPANY",
		})
		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.debtorRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects unknown debtor type", func(t *testing.T) {
		f := newDebtorServiceFixture()

		_, err := f.service.Create(ctx, adminCaller(), CreateDebtorRequest{
			TenantID: tenantID,
			Name:     "Acme GmbH",
			Type:     "PARTNERSHIP",
		})
		require.Error(t, err)
		assert.Equal(t, "INVALID_TYPE", err.(*shared.DomainError).Code)
	})
}

func TestDebtorService_GetByID(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("returns visible debtor", func(t *testing.T) {
		f := newDebtorServiceFixture()
		debtor := fixtureDebtor(t, tenantID)

		f.debtorRepo.On("FindByID", ctx, debtor.ID).Return(debtor, nil)

		response, err := f.service.GetByID(ctx, clientCaller(tenantID), debtor.ID)
		require.NoError(t, err)
		assert.Equal(t, debtor.ID, response.ID)
	})

	t.Run("rejects debtor access outside the caller scope", func(t *testing.T) {
		f := newDebtorServiceFixture()
		debtor := fixtureDebtor(t, tenantID)

		f.debtorRepo.On("FindByID", ctx, debtor.ID).Return(debtor, nil)

		_, err := f.service.GetByID(ctx, clientCaller(uuid.New()), debtor.ID)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestDebtorService_GetCases(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	f := newDebtorServiceFixture()
	debtor := fixtureDebtor(t, tenantID)
	c := fixtureCase(t, tenantID, debtor.ID)

	f.debtorRepo.On("FindByID", ctx, debtor.ID).Return(debtor, nil)
	f.caseRepo.On("FindByDebtor", ctx, debtor.ID).Return([]collection.Case{*c}, nil)

	cases, err := f.service.GetCases(ctx, clientCaller(tenantID), debtor.ID)
	require.NoError(t, err)

	assert.Len(t, cases, 1)
	assert.Equal(t, c.InvoiceNumber, cases[0].InvoiceNumber)
}

func TestDebtorService_List(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("empty scope short-circuits", func(t *testing.T) {
		f := newDebtorServiceFixture()

		result, err := f.service.List(ctx, identity.Caller{Role: identity.RoleClient}, DebtorListFilter{})
		require.NoError(t, err)

		assert.Empty(t, result.Items)
		f.debtorRepo.AssertNotCalled(t, "FindAll")
	})

	t.Run("defaults to ordering by name", func(t *testing.T) {
		f := newDebtorServiceFixture()
		debtor := fixtureDebtor(t, tenantID)

		f.debtorRepo.On("FindAll", ctx, mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
			return filter.OrderBy == "name" && filter.OrderDir == "asc"
		})).Return([]collection.Debtor{*debtor}, nil)
		f.debtorRepo.On("Count", ctx, mock.Anything, mock.Anything).Return(int64(1), nil)

		result, err := f.service.List(ctx, clientCaller(tenantID), DebtorListFilter{})
		require.NoError(t, err)
		assert.Len(t, result.Items, 1)
	})
}

func TestDebtorService_Update(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	f := newDebtorServiceFixture()
	debtor := fixtureDebtor(t, tenantID)
	debtor.SetContact("old@debtor.example", "030-1234")

	f.debtorRepo.On("FindByID", ctx, debtor.ID).Return(debtor, nil)
	f.debtorRepo.On("Save", ctx, debtor).Return(nil)

	email := "new@debtor.example"
	response, err := f.service.Update(ctx, clientCaller(tenantID), debtor.ID, UpdateDebtorRequest{Email: &email})
	require.NoError(t, err)

	assert.Equal(t, "new@debtor.example", response.Email)
	assert.Equal(t, "030-1234", response.Phone)
}
