package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/domain/shared/valueobject"
)

// newMockCaseRepository creates a GormCaseRepository with a mocked SQL connection
func newMockCaseRepository(t *testing.T) (*GormCaseRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormCaseRepository(gormDB), mock, mockDB
}

func persistedCase(t *testing.T, tenantID uuid.UUID) *collection.Case {
	t.Helper()
	c, err := collection.NewCase(
		tenantID,
		uuid.New(),
		"RE-2024-001",
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		decimal.NewFromFloat(1500.00),
		decimal.NewFromFloat(45.50),
		decimal.NewFromFloat(12.30),
		valueobject.EUR,
	)
	require.NoError(t, err)
	return c
}

func persistedDebtor(t *testing.T, tenantID uuid.UUID) *collection.Debtor {
	t.Helper()
	debtor, err := collection.NewDebtor(tenantID, "Max Mustermann", collection.DebtorTypeIndividual)
	require.NoError(t, err)
	debtor.SetAddress("Hauptstr. 1", "10115", "Berlin", "Deutschland")
	return debtor
}

func TestGormCaseRepository_FindByID(t *testing.T) {
	t.Run("finds existing case", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		caseID := uuid.New()
		tenantID := uuid.New()
		debtorID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "tenant_id", "debtor_id", "invoice_number",
			"principal_amount", "costs", "interest", "currency", "status", "version",
		}).AddRow(
			caseID, tenantID, debtorID, "RE-2024-001",
			decimal.NewFromFloat(1500.00), decimal.NewFromFloat(45.50), decimal.NewFromFloat(12.30),
			"EUR", "NEW", 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "cases" WHERE id = \$1`).
			WithArgs(caseID, 1).
			WillReturnRows(rows)

		c, err := repo.FindByID(context.Background(), caseID)

		assert.NoError(t, err)
		assert.NotNil(t, c)
		assert.Equal(t, caseID, c.ID)
		assert.Equal(t, debtorID, c.DebtorID)
		assert.Equal(t, collection.StatusNew, c.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing case", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		caseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cases" WHERE id = \$1`).
			WithArgs(caseID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		c, err := repo.FindByID(context.Background(), caseID)

		assert.Error(t, err)
		assert.Nil(t, c)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCaseRepository_FindAll(t *testing.T) {
	t.Run("restricts tenant-scoped queries", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		scope := shared.TenantScope(tenantID)

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "invoice_number", "status", "version"})

		mock.ExpectQuery(`SELECT \* FROM "cases" WHERE tenant_id IN \(\$1\)`).
			WithArgs(tenantID, 20).
			WillReturnRows(rows)

		cases, err := repo.FindAll(context.Background(), scope, shared.DefaultFilter())

		assert.NoError(t, err)
		assert.Empty(t, cases)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies status filter without tenant restriction for unrestricted scope", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		filter := shared.DefaultFilter()
		filter.Filters["status"] = "REMINDER_1"

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "invoice_number", "status", "version"})

		mock.ExpectQuery(`SELECT \* FROM "cases" WHERE status = \$1`).
			WithArgs("REMINDER_1", 20).
			WillReturnRows(rows)

		_, err := repo.FindAll(context.Background(), shared.UnrestrictedScope(), filter)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty scope matches no rows", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "invoice_number", "status", "version"})

		mock.ExpectQuery(`SELECT \* FROM "cases" WHERE 1 = 0`).
			WithArgs(20).
			WillReturnRows(rows)

		cases, err := repo.FindAll(context.Background(), shared.EmptyScope(), shared.DefaultFilter())

		assert.NoError(t, err)
		assert.Empty(t, cases)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCaseRepository_ExistsByInvoiceNumber(t *testing.T) {
	t.Run("returns true when invoice number is taken", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "cases" WHERE tenant_id = \$1 AND invoice_number = \$2`).
			WithArgs(tenantID, "RE-2024-001").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByInvoiceNumber(context.Background(), tenantID, "RE-2024-001")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false when invoice number is free", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "cases" WHERE tenant_id = \$1 AND invoice_number = \$2`).
			WithArgs(tenantID, "RE-2024-999").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByInvoiceNumber(context.Background(), tenantID, "RE-2024-999")

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCaseRepository_CreateWithHistory(t *testing.T) {
	t.Run("inserts case, debtor update and history in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		c := persistedCase(t, tenantID)
		debtor := persistedDebtor(t, tenantID)
		debtor.ApplyCaseOpened(c.TotalAmount())

		entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionCreated, "Case created", uuid.New(), "admin")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "cases"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "debtors" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "case_histories"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.CreateWithHistory(context.Background(), c, debtor, entry)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when debtor update misses its version", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		c := persistedCase(t, tenantID)
		debtor := persistedDebtor(t, tenantID)
		debtor.ApplyCaseOpened(c.TotalAmount())

		entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionCreated, "Case created", uuid.New(), "admin")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "cases"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "debtors" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.CreateWithHistory(context.Background(), c, debtor, entry)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCaseRepository_SaveWithHistory(t *testing.T) {
	t.Run("updates case guarded by version and appends history", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		c := persistedCase(t, tenantID)

		entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionUpdated, "Case updated", uuid.New(), "admin")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "cases" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "case_histories"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.SaveWithHistory(context.Background(), c, nil, entry)

		assert.NoError(t, err)
		assert.Equal(t, 2, c.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when the version moved", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		c := persistedCase(t, tenantID)

		entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionUpdated, "Case updated", uuid.New(), "admin")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "cases" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.SaveWithHistory(context.Background(), c, nil, entry)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updates debtor aggregate when the claim total moved", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		c := persistedCase(t, tenantID)
		debtor := persistedDebtor(t, tenantID)
		debtor.ApplyCaseOpened(c.TotalAmount())
		debtor.ApplyCaseTotalDelta(decimal.NewFromFloat(100.00))

		entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionUpdated, "Case updated", uuid.New(), "admin")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "cases" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "debtors" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "case_histories"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.SaveWithHistory(context.Background(), c, debtor, entry)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCaseRepository_DeleteWithHistory(t *testing.T) {
	t.Run("deletes case, reverses debtor aggregate and keeps the audit entry", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		c := persistedCase(t, tenantID)
		debtor := persistedDebtor(t, tenantID)
		debtor.ApplyCaseOpened(c.TotalAmount())
		debtor.ApplyCaseRemoved(c.TotalAmount())

		entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionDeleted, "Case deleted", uuid.New(), "admin")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "cases" WHERE id = \$1 AND version = \$2`).
			WithArgs(c.ID, c.Version).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "debtors" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "case_histories"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.DeleteWithHistory(context.Background(), c, debtor, entry)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when the case changed underneath", func(t *testing.T) {
		repo, mock, mockDB := newMockCaseRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		c := persistedCase(t, tenantID)
		debtor := persistedDebtor(t, tenantID)

		entry, err := collection.NewCaseHistory(c.ID, collection.HistoryActionDeleted, "Case deleted", uuid.New(), "admin")
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "cases" WHERE id = \$1 AND version = \$2`).
			WithArgs(c.ID, c.Version).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err = repo.DeleteWithHistory(context.Background(), c, debtor, entry)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
