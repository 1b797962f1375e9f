package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/shared"
)

// newMockDebtorRepository creates a GormDebtorRepository with a mocked SQL connection
func newMockDebtorRepository(t *testing.T) (*GormDebtorRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormDebtorRepository(gormDB), mock, mockDB
}

func TestGormDebtorRepository_FindByID(t *testing.T) {
	t.Run("finds existing debtor", func(t *testing.T) {
		repo, mock, mockDB := newMockDebtorRepository(t)
		defer mockDB.Close()

		debtorID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "name", "type", "city", "country", "total_debt", "open_cases", "version",
		}).AddRow(
			debtorID, tenantID, "Muster GmbH", "COMPANY", "Berlin", "Deutschland",
			decimal.NewFromFloat(2300.50), 2, 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "debtors" WHERE id = \$1`).
			WithArgs(debtorID, 1).
			WillReturnRows(rows)

		debtor, err := repo.FindByID(context.Background(), debtorID)

		assert.NoError(t, err)
		assert.NotNil(t, debtor)
		assert.Equal(t, debtorID, debtor.ID)
		assert.Equal(t, collection.DebtorTypeCompany, debtor.Type)
		assert.Equal(t, 2, debtor.OpenCases)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing debtor", func(t *testing.T) {
		repo, mock, mockDB := newMockDebtorRepository(t)
		defer mockDB.Close()

		debtorID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "debtors" WHERE id = \$1`).
			WithArgs(debtorID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		debtor, err := repo.FindByID(context.Background(), debtorID)

		assert.Error(t, err)
		assert.Nil(t, debtor)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDebtorRepository_FindAll(t *testing.T) {
	t.Run("restricts tenant-scoped queries", func(t *testing.T) {
		repo, mock, mockDB := newMockDebtorRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "type", "version"})

		mock.ExpectQuery(`SELECT \* FROM "debtors" WHERE tenant_id IN \(\$1\)`).
			WithArgs(tenantID, 20).
			WillReturnRows(rows)

		debtors, err := repo.FindAll(context.Background(), shared.TenantScope(tenantID), shared.DefaultFilter())

		assert.NoError(t, err)
		assert.Empty(t, debtors)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("matches name and email against the search term", func(t *testing.T) {
		repo, mock, mockDB := newMockDebtorRepository(t)
		defer mockDB.Close()

		filter := shared.DefaultFilter()
		filter.Filters["search"] = "muster"

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "name", "type", "version"})

		mock.ExpectQuery(`SELECT \* FROM "debtors" WHERE name ILIKE \$1 OR email ILIKE \$2`).
			WithArgs("%muster%", "%muster%", 20).
			WillReturnRows(rows)

		_, err := repo.FindAll(context.Background(), shared.UnrestrictedScope(), filter)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDebtorRepository_Count(t *testing.T) {
	t.Run("counts debtors within scope", func(t *testing.T) {
		repo, mock, mockDB := newMockDebtorRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "debtors" WHERE tenant_id IN \(\$1\)`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.Count(context.Background(), shared.TenantScope(tenantID), shared.DefaultFilter())

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDebtorRepository_Save(t *testing.T) {
	t.Run("updates existing debtor", func(t *testing.T) {
		repo, mock, mockDB := newMockDebtorRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		debtor := persistedDebtor(t, tenantID)
		debtor.ApplyCaseOpened(decimal.NewFromFloat(500.00))

		mock.ExpectExec(`UPDATE "debtors" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), debtor)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
