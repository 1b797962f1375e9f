package collection

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/inkasso/backend/internal/domain/shared"
)

// HistoryAction represents the kind of case mutation recorded in the audit trail
type HistoryAction string

const (
	HistoryActionCreated      HistoryAction = "CREATED"
	HistoryActionUpdated      HistoryAction = "UPDATED"
	HistoryActionStatusChange HistoryAction = "STATUS_CHANGE"
	HistoryActionDeleted      HistoryAction = "DELETED"
)

// String returns the string representation of HistoryAction
func (a HistoryAction) String() string {
	return string(a)
}

// IsValid returns true if the action is a defined HistoryAction
func (a HistoryAction) IsValid() bool {
	switch a {
	case HistoryActionCreated, HistoryActionUpdated, HistoryActionStatusChange, HistoryActionDeleted:
		return true
	}
	return false
}

// CaseHistory is one append-only audit trail entry for a case mutation.
// Entries are immutable once created and are consumed newest-first.
type CaseHistory struct {
	shared.BaseEntity
	CaseID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	Action    HistoryAction `gorm:"type:varchar(30);not null"`
	Details   string        `gorm:"type:text"`
	ActorID   uuid.UUID     `gorm:"type:uuid;not null"`
	ActorName string        `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (CaseHistory) TableName() string {
	return "case_histories"
}

// NewCaseHistory creates a new audit trail entry
func NewCaseHistory(caseID uuid.UUID, action HistoryAction, details string, actorID uuid.UUID, actorName string) (*CaseHistory, error) {
	if caseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASE", "Case ID cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", fmt.Sprintf("Unknown history action %s", action))
	}
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}

	return &CaseHistory{
		BaseEntity: shared.NewBaseEntity(),
		CaseID:     caseID,
		Action:     action,
		Details:    details,
		ActorID:    actorID,
		ActorName:  actorName,
	}, nil
}

// NewStatusChangeHistory creates a STATUS_CHANGE entry describing the
// transition and carrying the caller's optional note.
func NewStatusChangeHistory(caseID uuid.UUID, from, to CaseStatus, note string, actorID uuid.UUID, actorName string) (*CaseHistory, error) {
	details := fmt.Sprintf("Status changed from %s to %s", from, to)
	if note != "" {
		details = fmt.Sprintf("%s: %s", details, note)
	}
	return NewCaseHistory(caseID, HistoryActionStatusChange, details, actorID, actorName)
}
