package collection

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkasso/backend/internal/domain/shared"
)

func TestNewCaseHistory(t *testing.T) {
	t.Run("creates entry", func(t *testing.T) {
		caseID := uuid.New()
		actorID := uuid.New()

		entry, err := NewCaseHistory(caseID, HistoryActionCreated, "Case created", actorID, "Max Sachbearbeiter")
		require.NoError(t, err)

		assert.Equal(t, caseID, entry.CaseID)
		assert.Equal(t, HistoryActionCreated, entry.Action)
		assert.Equal(t, "Max Sachbearbeiter", entry.ActorName)
		assert.False(t, entry.CreatedAt.IsZero())
	})

	t.Run("rejects empty case id", func(t *testing.T) {
		_, err := NewCaseHistory(uuid.Nil, HistoryActionCreated, "", uuid.New(), "x")
		require.Error(t, err)
		assert.Equal(t, "INVALID_CASE", err.(*shared.DomainError).Code)
	})

	t.Run("rejects unknown action", func(t *testing.T) {
		_, err := NewCaseHistory(uuid.New(), HistoryAction("PURGED"), "", uuid.New(), "x")
		require.Error(t, err)
		assert.Equal(t, "INVALID_ACTION", err.(*shared.DomainError).Code)
	})
}

func TestNewStatusChangeHistory(t *testing.T) {
	t.Run("details name both statuses", func(t *testing.T) {
		entry, err := NewStatusChangeHistory(uuid.New(), StatusNew, StatusReminder1, "", uuid.New(), "x")
		require.NoError(t, err)

		assert.Contains(t, entry.Details, "NEW")
		assert.Contains(t, entry.Details, "REMINDER_1")
	})

	t.Run("note is appended", func(t *testing.T) {
		entry, err := NewStatusChangeHistory(uuid.New(), StatusNew, StatusPaid, "paid in full", uuid.New(), "x")
		require.NoError(t, err)

		assert.Contains(t, entry.Details, "paid in full")
	})
}
