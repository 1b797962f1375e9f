package collection

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/domain/shared/valueobject"
)

func newTestCase(t *testing.T) *Case {
	t.Helper()
	invoiceDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	c, err := NewCase(uuid.New(), uuid.New(), "RE-2026-0042",
		invoiceDate, invoiceDate.AddDate(0, 0, 14),
		decimal.NewFromInt(100), decimal.Zero, decimal.Zero, valueobject.EUR)
	require.NoError(t, err)
	return c
}

func TestNewCase(t *testing.T) {
	t.Run("creates case in NEW status with deadline", func(t *testing.T) {
		c := newTestCase(t)

		assert.Equal(t, StatusNew, c.Status)
		require.NotNil(t, c.NextActionDate)
		assert.True(t, c.NextActionDate.After(time.Now()))
		assert.Equal(t, 1, c.Version)
	})

	t.Run("rejects empty debtor", func(t *testing.T) {
		_, err := NewCase(uuid.New(), uuid.Nil, "RE-1", time.Now(), time.Now(),
			decimal.Zero, decimal.Zero, decimal.Zero, valueobject.EUR)
		require.Error(t, err)
		assert.Equal(t, "INVALID_DEBTOR", err.(*shared.DomainError).Code)
	})

	t.Run("rejects empty invoice number", func(t *testing.T) {
		_, err := NewCase(uuid.New(), uuid.New(), "", time.Now(), time.Now(),
			decimal.Zero, decimal.Zero, decimal.Zero, valueobject.EUR)
		require.Error(t, err)
		assert.Equal(t, "INVALID_INVOICE_NUMBER", err.(*shared.DomainError).Code)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := NewCase(uuid.New(), uuid.New(), "RE-1", time.Now(), time.Now(),
			decimal.NewFromInt(-1), decimal.Zero, decimal.Zero, valueobject.EUR)
		require.Error(t, err)
		assert.Equal(t, "INVALID_AMOUNT", err.(*shared.DomainError).Code)
	})

	t.Run("rejects due date before invoice date", func(t *testing.T) {
		invoiceDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
		_, err := NewCase(uuid.New(), uuid.New(), "RE-1", invoiceDate, invoiceDate.AddDate(0, 0, -1),
			decimal.Zero, decimal.Zero, decimal.Zero, valueobject.EUR)
		require.Error(t, err)
		assert.Equal(t, "INVALID_DUE_DATE", err.(*shared.DomainError).Code)
	})

	t.Run("defaults currency to EUR", func(t *testing.T) {
		invoiceDate := time.Now()
		c, err := NewCase(uuid.New(), uuid.New(), "RE-1", invoiceDate, invoiceDate,
			decimal.Zero, decimal.Zero, decimal.Zero, "")
		require.NoError(t, err)
		assert.Equal(t, valueobject.EUR, c.Currency)
	})
}

func TestNewDraftCase(t *testing.T) {
	invoiceDate := time.Now()
	c, err := NewDraftCase(uuid.New(), uuid.New(), "RE-1", invoiceDate, invoiceDate,
		decimal.NewFromInt(50), decimal.Zero, decimal.Zero, valueobject.EUR)
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, c.Status)
	assert.True(t, c.IsDeletable())
}

func TestCase_TotalAmount(t *testing.T) {
	c := newTestCase(t)

	assert.True(t, decimal.NewFromInt(100).Equal(c.TotalAmount()))

	require.NoError(t, c.UpdateAmounts(
		decimal.NewFromFloat(100.50), decimal.NewFromInt(25), decimal.NewFromFloat(3.75)))
	assert.True(t, decimal.NewFromFloat(129.25).Equal(c.TotalAmount()))

	// derived value tracks the components after every mutation
	assert.True(t, c.TotalAmount().Equal(c.PrincipalAmount.Add(c.Costs).Add(c.Interest)))
}

func TestCase_UpdateAmounts(t *testing.T) {
	c := newTestCase(t)

	err := c.UpdateAmounts(decimal.NewFromInt(10), decimal.NewFromInt(-5), decimal.Zero)
	require.Error(t, err)
	assert.Equal(t, "INVALID_AMOUNT", err.(*shared.DomainError).Code)
	// failed update leaves the case untouched
	assert.True(t, decimal.NewFromInt(100).Equal(c.TotalAmount()))
}

func TestCase_AdvanceTo(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("allowed transition updates status and deadline", func(t *testing.T) {
		c := newTestCase(t)

		changed, err := c.AdvanceTo(StatusReminder1, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, StatusReminder1, c.Status)
		require.NotNil(t, c.NextActionDate)
		assert.Equal(t, now.AddDate(0, 0, 14), *c.NextActionDate)
	})

	t.Run("illegal transition names both statuses", func(t *testing.T) {
		c := newTestCase(t)
		_, err := c.AdvanceTo(StatusReminder1, now)
		require.NoError(t, err)

		changed, err := c.AdvanceTo(StatusMBRequested, now)
		require.Error(t, err)
		assert.False(t, changed)
		domainErr := err.(*shared.DomainError)
		assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
		assert.Contains(t, domainErr.Message, "REMINDER_1")
		assert.Contains(t, domainErr.Message, "MB_REQUESTED")
		assert.Equal(t, StatusReminder1, c.Status)
	})

	t.Run("same status is an idempotent no-op", func(t *testing.T) {
		c := newTestCase(t)
		deadline := c.NextActionDate

		changed, err := c.AdvanceTo(StatusNew, now)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, deadline, c.NextActionDate)
	})

	t.Run("closure clears the deadline", func(t *testing.T) {
		c := newTestCase(t)

		changed, err := c.AdvanceTo(StatusPaid, now)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Nil(t, c.NextActionDate)
		assert.True(t, c.IsClosed())
	})
}

func TestCase_IsDeletable(t *testing.T) {
	c := newTestCase(t)
	assert.True(t, c.IsDeletable())

	_, err := c.AdvanceTo(StatusReminder1, time.Now())
	require.NoError(t, err)
	assert.False(t, c.IsDeletable())
}

func TestCaseStatus_ReducesDebt(t *testing.T) {
	assert.True(t, StatusPaid.ReducesDebt())
	assert.True(t, StatusSettled.ReducesDebt())
	assert.False(t, StatusInsolvency.ReducesDebt())
	assert.False(t, StatusUncollectible.ReducesDebt())
	assert.False(t, StatusNew.ReducesDebt())
}
