package collection

// CaseStatus represents the workflow status of a collection case.
// The statuses follow the phases of the German dunning procedure (ZPO):
// pre-court reminders, court dunning (Mahnbescheid), enforcement order
// (Vollstreckungsbescheid), enforcement and closure.
type CaseStatus string

const (
	// Pre-court phase
	StatusDraft           CaseStatus = "DRAFT"
	StatusNew             CaseStatus = "NEW"
	StatusReminder1       CaseStatus = "REMINDER_1"
	StatusReminder2       CaseStatus = "REMINDER_2"
	StatusAddressResearch CaseStatus = "ADDRESS_RESEARCH"

	// Court dunning phase (Mahnbescheid)
	StatusPrepareMB   CaseStatus = "PREPARE_MB"
	StatusMBRequested CaseStatus = "MB_REQUESTED"
	StatusMBIssued    CaseStatus = "MB_ISSUED"
	StatusMBObjection CaseStatus = "MB_OBJECTION"

	// Enforcement order phase (Vollstreckungsbescheid)
	StatusPrepareVB     CaseStatus = "PREPARE_VB"
	StatusVBRequested   CaseStatus = "VB_REQUESTED"
	StatusVBIssued      CaseStatus = "VB_ISSUED"
	StatusTitleObtained CaseStatus = "TITLE_OBTAINED"

	// Enforcement phase (Gerichtsvollzieher)
	StatusEnforcementPrep CaseStatus = "ENFORCEMENT_PREP"
	StatusGVMandated      CaseStatus = "GV_MANDATED"
	StatusEVTaken         CaseStatus = "EV_TAKEN"

	// Closure statuses - terminal, no outgoing transitions
	StatusPaid          CaseStatus = "PAID"
	StatusSettled       CaseStatus = "SETTLED"
	StatusInsolvency    CaseStatus = "INSOLVENCY"
	StatusUncollectible CaseStatus = "UNCOLLECTIBLE"
)

// AllStatuses lists every defined case status
var AllStatuses = []CaseStatus{
	StatusDraft, StatusNew, StatusReminder1, StatusReminder2, StatusAddressResearch,
	StatusPrepareMB, StatusMBRequested, StatusMBIssued, StatusMBObjection,
	StatusPrepareVB, StatusVBRequested, StatusVBIssued, StatusTitleObtained,
	StatusEnforcementPrep, StatusGVMandated, StatusEVTaken,
	StatusPaid, StatusSettled, StatusInsolvency, StatusUncollectible,
}

// String returns the string representation of CaseStatus
func (s CaseStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a defined CaseStatus
func (s CaseStatus) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsClosure returns true for the four terminal statuses
func (s CaseStatus) IsClosure() bool {
	switch s {
	case StatusPaid, StatusSettled, StatusInsolvency, StatusUncollectible:
		return true
	}
	return false
}

// ReducesDebt returns true if closing a case with this status settles the
// claim (the debtor aggregate's total debt shrinks by the case total).
// Write-off closures (insolvency, uncollectible) keep the recorded debt.
func (s CaseStatus) ReducesDebt() bool {
	return s == StatusPaid || s == StatusSettled
}
