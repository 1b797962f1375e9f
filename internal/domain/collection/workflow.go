package collection

import (
	"time"
)

// transitions is the workflow transition table: each status maps to the set
// of statuses reachable from it. Closure statuses have no outgoing edges.
// Pre-court and dunning statuses allow an early jump to PAID/SETTLED,
// research/court/enforcement statuses additionally allow UNCOLLECTIBLE, and
// enforcement statuses allow INSOLVENCY.
var transitions = map[CaseStatus][]CaseStatus{
	StatusDraft:           {StatusNew, StatusPaid, StatusSettled},
	StatusNew:             {StatusReminder1, StatusPaid, StatusSettled},
	StatusReminder1:       {StatusReminder2, StatusPaid, StatusSettled},
	StatusReminder2:       {StatusAddressResearch, StatusPrepareMB, StatusPaid, StatusSettled},
	StatusAddressResearch: {StatusPrepareMB, StatusPaid, StatusSettled, StatusUncollectible},
	StatusPrepareMB:       {StatusMBRequested, StatusPaid, StatusSettled, StatusUncollectible},
	StatusMBRequested:     {StatusMBIssued, StatusPaid, StatusSettled, StatusUncollectible},
	StatusMBIssued:        {StatusMBObjection, StatusPrepareVB, StatusPaid, StatusSettled, StatusUncollectible},
	StatusMBObjection:     {StatusPaid, StatusSettled, StatusUncollectible},
	StatusPrepareVB:       {StatusVBRequested, StatusPaid, StatusSettled, StatusUncollectible},
	StatusVBRequested:     {StatusVBIssued, StatusPaid, StatusSettled, StatusUncollectible},
	StatusVBIssued:        {StatusTitleObtained, StatusPaid, StatusSettled, StatusUncollectible},
	StatusTitleObtained:   {StatusEnforcementPrep, StatusPaid, StatusSettled, StatusUncollectible},
	StatusEnforcementPrep: {StatusGVMandated, StatusPaid, StatusSettled, StatusInsolvency, StatusUncollectible},
	StatusGVMandated:      {StatusEVTaken, StatusPaid, StatusSettled, StatusInsolvency, StatusUncollectible},
	StatusEVTaken:         {StatusPaid, StatusSettled, StatusInsolvency, StatusUncollectible},
	StatusPaid:            {},
	StatusSettled:         {},
	StatusInsolvency:      {},
	StatusUncollectible:   {},
}

// actionOffsetDays maps each non-closure status to the statutory follow-up
// deadline in days. Statuses missing from the table fall back to
// defaultActionOffsetDays.
var actionOffsetDays = map[CaseStatus]int{
	StatusDraft:           7,
	StatusNew:             7,
	StatusReminder1:       14,
	StatusReminder2:       14,
	StatusAddressResearch: 30,
	StatusPrepareMB:       7,
	StatusMBRequested:     14,
	StatusMBIssued:        14,
	StatusMBObjection:     14,
	StatusPrepareVB:       7,
	StatusVBRequested:     14,
	StatusVBIssued:        14,
	StatusTitleObtained:   30,
	StatusEnforcementPrep: 14,
	StatusGVMandated:      30,
	StatusEVTaken:         30,
}

const defaultActionOffsetDays = 7

// CanTransition returns true if a case may move from one status to another.
// A same-status re-application is always allowed (idempotent no-op); a source
// status missing from the table permits nothing else.
func CanTransition(from, to CaseStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from the given status.
// Unknown statuses yield an empty set.
func AllowedTransitions(status CaseStatus) []CaseStatus {
	allowed, ok := transitions[status]
	if !ok {
		return nil
	}
	out := make([]CaseStatus, len(allowed))
	copy(out, allowed)
	return out
}

// NextActionDate computes the follow-up deadline for a status relative to
// now. Closure statuses have no deadline and yield nil.
func NextActionDate(status CaseStatus, now time.Time) *time.Time {
	if status.IsClosure() {
		return nil
	}
	days, ok := actionOffsetDays[status]
	if !ok {
		days = defaultActionOffsetDays
	}
	deadline := now.AddDate(0, 0, days)
	return &deadline
}
