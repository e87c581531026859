package events

import (
	"time"

	"github.com/jabana-gov/case-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated         EventType = "case_created"
	EventCaseStatusChanged   EventType = "case_status_changed"
	EventCasePriorityChanged EventType = "case_priority_changed"
	EventCaseAssigned        EventType = "case_assigned"
	EventCaseNoteAdded       EventType = "case_note_added"
	EventCaseReopened        EventType = "case_reopened"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services. Reference carries the
// public case number so subscribers never need a second lookup to address
// the citizen.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    string      `json:"case_id"`
	Reference string      `json:"reference"`
	CitizenID *string     `json:"citizen_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	Type     domain.CaseType     `json:"type"`
	Category string              `json:"category"`
	Priority domain.CasePriority `json:"priority"`
	Location string              `json:"location"`
}

// CaseStatusChangedPayload payload.
type CaseStatusChangedPayload struct {
	OldStatus domain.CaseStatus `json:"old_status"`
	NewStatus domain.CaseStatus `json:"new_status"`
	Comment   string            `json:"comment,omitempty"`
}

// CasePriorityChangedPayload payload.
type CasePriorityChangedPayload struct {
	OldPriority domain.CasePriority `json:"old_priority"`
	NewPriority domain.CasePriority `json:"new_priority"`
}

// CaseAssignedPayload payload. AssigneeStaffID is nil on unassignment.
type CaseAssignedPayload struct {
	AssigneeStaffID *string `json:"assignee_staff_id,omitempty"`
	AssigneeName    string  `json:"assignee_name,omitempty"`
}

// CaseNoteAddedPayload payload.
type CaseNoteAddedPayload struct {
	NoteID      string `json:"note_id"`
	AuthorID    string `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}

// CaseReopenedPayload payload.
type CaseReopenedPayload struct {
	PreviousResolvedAt *time.Time `json:"previous_resolved_at,omitempty"`
}
