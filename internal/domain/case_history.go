package domain

import "time"

// ActorType indicates who performed a change.
type ActorType string

const (
	ActorTypeCitizen ActorType = "citizen"
	ActorTypeStaff   ActorType = "staff"
	ActorTypeSystem  ActorType = "system"
)

// CaseChangeType captures what changed in a history entry.
type CaseChangeType string

const (
	ChangeTypeStatus   CaseChangeType = "status_change"
	ChangeTypeAssignee CaseChangeType = "assignee_change"
	ChangeTypePriority CaseChangeType = "priority_change"
	ChangeTypeReopen   CaseChangeType = "reopen"
)

// CaseHistory is an immutable audit trail entry recording who changed what
// and when on a case.
type CaseHistory struct {
	ID            string
	CaseID        string
	ChangedByType ActorType
	ChangedByID   *string
	ChangeType    CaseChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
